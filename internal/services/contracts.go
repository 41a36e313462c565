package services

import (
	"context"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
)

// SpeechToText 把一段音频文件转写为带相对时间戳的片段（相对该文件起点）。
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) ([]po.Segment, error)
}

// TextGenerator 是生成式文本模型：输入提示词，返回原始文本。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HandRaiseDetector 统计一帧 JPEG 中举手的人数。
type HandRaiseDetector interface {
	CountRaisedHands(ctx context.Context, frame []byte) (int, error)
}

// MediaToolkit 抽象 ffmpeg/ffprobe 能力。
type MediaToolkit interface {
	Probe(ctx context.Context, path string) (*media.Info, error)
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	Split(ctx context.Context, audioPath, outDir string, length time.Duration) ([]media.Chunk, error)
	FrameAt(ctx context.Context, videoPath string, index int, fps float64) ([]byte, error)
}

// TranscriptStore 持久化转写结果，(lecture, user) 维度至多一条。
type TranscriptStore interface {
	Upsert(ctx context.Context, lectureID, userID string, segments []po.Segment) (*po.TranscriptRecord, error)
	Get(ctx context.Context, lectureID, userID string) (*po.TranscriptRecord, error)
}

// TranslationStore 是按 (lecture, user, language) 缓存的译文仓储。
type TranslationStore interface {
	Get(ctx context.Context, lectureID, userID string, lang po.Language) (*po.TranslationRecord, error)
	Upsert(ctx context.Context, record *po.TranslationRecord) error
	ListLanguages(ctx context.Context, lectureID, userID string) ([]po.Language, error)
}

// StatusStore 维护处理状态记录。
type StatusStore interface {
	Start(ctx context.Context, lectureID, userID string, preferred po.Language) (*po.ProcessingStatus, error)
	UpdateStage(ctx context.Context, lectureID, userID, label string, progress int) error
	MarkCompleted(ctx context.Context, lectureID, userID string) error
	MarkError(ctx context.Context, lectureID, userID, message string) error
	Get(ctx context.Context, lectureID, userID string) (*po.ProcessingStatus, error)
	StartTranslation(ctx context.Context, lectureID, userID string, lang po.Language) error
	CompleteTranslation(ctx context.Context, lectureID, userID string, lang po.Language) error
	FailTranslation(ctx context.Context, lectureID, userID string, lang po.Language, message string) error
}

// ResultsStore 持久化互动分析结果。
type ResultsStore interface {
	Save(ctx context.Context, result *po.EngagementResult) error
	MarkError(ctx context.Context, lectureID, userID, message string) error
	Get(ctx context.Context, lectureID, userID string) (*po.EngagementResult, error)
}

// TranscriptArchiver 把纯文本转写额外归档一份（可选后端）。
type TranscriptArchiver interface {
	Archive(ctx context.Context, lectureID, userID, text string, segmentCount int) error
}

// JobEnqueuer 把流水线任务投递到队列。
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *vo.PipelineJob) error
}
