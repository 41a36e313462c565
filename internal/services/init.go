package services

import (
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露 Service 层构造器，并把仓储实现绑定到服务依赖的接口。
var ProviderSet = wire.NewSet(
	NewPipelineMetrics,
	NewRetrier,
	ProvideTranscriber,
	NewTranslator,
	NewQuestionLocator,
	ProvideEngagementAnalyzer,
	NewPipelineService,
	NewUploadService,
	NewLectureQueryService,
	NewTranslationService,
	wire.Bind(new(MediaToolkit), new(*media.Toolkit)),
	wire.Bind(new(TranscriptStore), new(*repositories.TranscriptRepository)),
	wire.Bind(new(TranslationStore), new(*repositories.TranslationRepository)),
	wire.Bind(new(StatusStore), new(*repositories.StatusRepository)),
	wire.Bind(new(ResultsStore), new(*repositories.ResultsRepository)),
	wire.Bind(new(TranscriptArchiver), new(*repositories.TranscriptArchive)),
)

// ProvideTranscriber 按配置的并发度构造转写器。
func ProvideTranscriber(stt SpeechToText, cfg configloader.PipelineConfig, logger log.Logger) (*Transcriber, error) {
	return NewTranscriber(stt, cfg.TranscribeWorkers, logger)
}

// ProvideEngagementAnalyzer 从流水线配置构造互动分析器。
func ProvideEngagementAnalyzer(toolkit MediaToolkit, vision HandRaiseDetector, ai TextGenerator, retrier *Retrier, cfg configloader.PipelineConfig, metrics *PipelineMetrics, logger log.Logger) (*EngagementAnalyzer, error) {
	return NewEngagementAnalyzer(toolkit, vision, ai, retrier, EngagementConfig{
		TotalStudents:       cfg.TotalStudents,
		CompletionThreshold: cfg.CompletionThreshold,
	}, metrics, logger)
}
