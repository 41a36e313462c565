package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/mediastore"
	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"

	"github.com/go-kratos/kratos/v2/log"
)

// PipelineService 编排一次课程处理：取回视频、抽音轨、切片、转写、保存、（可选）翻译、互动分析。
// 每次进入阶段前持久化 stage/progress；任一阶段失败即写入 error 并停止，编排器本身不重试。
type PipelineService struct {
	cfg         configloader.PipelineConfig
	toolkit     MediaToolkit
	media       mediastore.Store
	transcriber *Transcriber
	translator  *Translator
	locator     *QuestionLocator
	analyzer    *EngagementAnalyzer
	transcripts TranscriptStore
	statuses    StatusStore
	results     ResultsStore
	archive     TranscriptArchiver
	log         *log.Helper
	metrics     *PipelineMetrics
}

// NewPipelineService 构造编排器。archive 可为 nil。
func NewPipelineService(
	cfg configloader.PipelineConfig,
	toolkit MediaToolkit,
	store mediastore.Store,
	transcriber *Transcriber,
	translator *Translator,
	locator *QuestionLocator,
	analyzer *EngagementAnalyzer,
	transcripts TranscriptStore,
	statuses StatusStore,
	results ResultsStore,
	archive TranscriptArchiver,
	metrics *PipelineMetrics,
	logger log.Logger,
) (*PipelineService, error) {
	switch {
	case toolkit == nil:
		return nil, errors.New("pipeline: media toolkit is required")
	case store == nil:
		return nil, errors.New("pipeline: media store is required")
	case transcriber == nil || translator == nil || locator == nil || analyzer == nil:
		return nil, errors.New("pipeline: stage services are required")
	case transcripts == nil || statuses == nil || results == nil:
		return nil, errors.New("pipeline: repositories are required")
	case cfg.WorkDir == "":
		return nil, errors.New("pipeline: work dir is required")
	case cfg.ChunkDuration <= 0:
		return nil, errors.New("pipeline: chunk duration must be positive")
	}
	return &PipelineService{
		cfg:         cfg,
		toolkit:     toolkit,
		media:       store,
		transcriber: transcriber,
		translator:  translator,
		locator:     locator,
		analyzer:    analyzer,
		transcripts: transcripts,
		statuses:    statuses,
		results:     results,
		archive:     archive,
		metrics:     metrics,
		log:         log.NewHelper(logger),
	}, nil
}

// pipelineRun 是单次运行的可变状态。
type pipelineRun struct {
	job       *vo.PipelineJob
	lang      po.Language
	machine   *po.StageMachine
	workDir   string
	videoPath string
	audioPath string
	chunks    []media.Chunk
	segments  []po.Segment
	plainText string
}

// Process 执行一次处理任务。返回的错误已记录到状态表，调用方只需记录日志，不应重投任务。
func (p *PipelineService) Process(ctx context.Context, job *vo.PipelineJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	lang, ok := po.ParseLanguage(job.Language)
	if !ok {
		lang = po.LanguageEnglish
	}
	workDir := filepath.Join(p.cfg.WorkDir, job.ID)
	run := &pipelineRun{
		job:       job,
		lang:      lang,
		machine:   po.NewStageMachine(),
		workDir:   workDir,
		videoPath: filepath.Join(workDir, "source"+filepath.Ext(job.MediaKey)),
		audioPath: filepath.Join(workDir, "audio.mp3"),
	}

	p.log.WithContext(ctx).Infof("pipeline started: lecture_id=%s user_id=%s job_id=%s language=%s",
		job.LectureID, job.UserID, job.ID, lang)
	started := time.Now()

	if err := p.execute(ctx, run); err != nil {
		p.fail(ctx, run, err)
		p.metrics.recordRun(ctx, string(po.RunStatusError))
		return err
	}

	p.cleanup(ctx, run)
	p.metrics.recordRun(ctx, string(po.RunStatusCompleted))
	p.log.WithContext(ctx).Infof("pipeline completed: lecture_id=%s job_id=%s elapsed=%s",
		job.LectureID, job.ID, time.Since(started).Round(time.Millisecond))
	return nil
}

func (p *PipelineService) execute(ctx context.Context, run *pipelineRun) error {
	job := run.job

	if err := os.MkdirAll(run.workDir, 0o755); err != nil {
		return stageFailure(run.machine.Current(), ErrMedia, fmt.Errorf("create work dir: %w", err))
	}

	if err := p.step(ctx, run, po.StageExtractingAudio, ErrMedia, func(ctx context.Context) error {
		if err := p.media.Fetch(ctx, job.MediaKey, run.videoPath); err != nil {
			return fmt.Errorf("fetch source video: %w", err)
		}
		return p.toolkit.ExtractAudio(ctx, run.videoPath, run.audioPath)
	}); err != nil {
		return err
	}

	if err := p.step(ctx, run, po.StageSplittingAudio, ErrMedia, func(ctx context.Context) error {
		chunks, err := p.toolkit.Split(ctx, run.audioPath, filepath.Join(run.workDir, "chunks"), p.cfg.ChunkDuration)
		run.chunks = chunks
		return err
	}); err != nil {
		return err
	}

	if err := p.step(ctx, run, po.StageTranscribing, ErrTranscription, func(ctx context.Context) error {
		segments, err := p.transcriber.Transcribe(ctx, run.chunks)
		run.segments = segments
		return err
	}); err != nil {
		return err
	}

	if err := p.step(ctx, run, po.StageSavingTranscripts, ErrPersistence, func(ctx context.Context) error {
		record, err := p.transcripts.Upsert(ctx, job.LectureID, job.UserID, run.segments)
		if err != nil {
			return err
		}
		run.plainText = record.PlainTranscript
		p.archiveTranscript(ctx, run)
		return nil
	}); err != nil {
		return err
	}

	if !run.lang.IsSource() {
		if err := p.step(ctx, run, po.StageTranslating, ErrTranslation, func(ctx context.Context) error {
			p.translateEagerly(ctx, run)
			return nil
		}); err != nil {
			return err
		}
	}

	if err := p.step(ctx, run, po.StageAnalyzingVideo, ErrAnalysis, func(ctx context.Context) error {
		questions, err := p.locator.Locate(ctx, run.segments)
		if err != nil {
			return err
		}
		result, err := p.analyzer.Analyze(ctx, job.LectureID, job.UserID, run.videoPath, questions)
		if err != nil {
			return err
		}
		if err := p.results.Save(ctx, result); err != nil {
			return fmt.Errorf("save engagement results: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := run.machine.Advance(po.StageCompleted); err != nil {
		return stageFailure(run.machine.Current(), ErrPersistence, err)
	}
	if err := p.statuses.MarkCompleted(ctx, job.LectureID, job.UserID); err != nil {
		return stageFailure(po.StageCompleted, ErrPersistence, err)
	}
	return nil
}

// step 推进状态机、持久化进度并执行阶段函数。阶段错误统一包装为 StageError。
func (p *PipelineService) step(ctx context.Context, run *pipelineRun, stage po.Stage, kind error, fn func(context.Context) error) error {
	if err := run.machine.Advance(stage); err != nil {
		return stageFailure(run.machine.Current(), kind, err)
	}
	if err := p.statuses.UpdateStage(ctx, run.job.LectureID, run.job.UserID, stage.Label(run.lang), stage.Progress()); err != nil {
		return stageFailure(stage, ErrPersistence, err)
	}

	started := time.Now()
	err := fn(ctx)
	p.metrics.recordStage(ctx, string(stage), started, err)
	if err != nil {
		return stageFailure(stage, kind, err)
	}
	p.log.WithContext(ctx).Debugf("stage done: lecture_id=%s stage=%s elapsed=%s",
		run.job.LectureID, stage, time.Since(started).Round(time.Millisecond))
	return nil
}

// translateEagerly 执行上传时指定语言的翻译。翻译失败只影响该译文：记录到翻译子状态后继续分析。
func (p *PipelineService) translateEagerly(ctx context.Context, run *pipelineRun) {
	job := run.job
	_, _, err := p.translator.Translate(ctx, job.LectureID, job.UserID, run.plainText, run.lang, p.cfg.UploadTranslationWindow)
	if err == nil {
		return
	}
	p.log.WithContext(ctx).Warnf("eager translation failed: lecture_id=%s language=%s err=%v", job.LectureID, run.lang, err)
	if ferr := p.statuses.FailTranslation(ctx, job.LectureID, job.UserID, run.lang, err.Error()); ferr != nil {
		p.log.WithContext(ctx).Warnf("record translation failure: lecture_id=%s err=%v", job.LectureID, ferr)
	}
}

func (p *PipelineService) archiveTranscript(ctx context.Context, run *pipelineRun) {
	if p.archive == nil {
		return
	}
	if err := p.archive.Archive(ctx, run.job.LectureID, run.job.UserID, run.plainText, len(run.segments)); err != nil {
		p.log.WithContext(ctx).Warnf("archive transcript failed: lecture_id=%s err=%v", run.job.LectureID, err)
	}
}

// fail 把运行标记为 error，并在结果记录上写入同一条消息。临时文件保留用于排查。
func (p *PipelineService) fail(ctx context.Context, run *pipelineRun, cause error) {
	ctx = context.WithoutCancel(ctx)
	job := run.job
	msg := cause.Error()
	if err := run.machine.Advance(po.StageError); err != nil {
		p.log.WithContext(ctx).Warnf("stage machine: %v", err)
	}

	p.log.WithContext(ctx).Errorw("msg", "pipeline failed", "lecture_id", job.LectureID, "job_id", job.ID,
		"work_dir", run.workDir, "error", cause)
	if err := p.statuses.MarkError(ctx, job.LectureID, job.UserID, msg); err != nil && !errors.Is(err, repositories.ErrStatusNotFound) {
		p.log.WithContext(ctx).Errorf("mark status error failed: lecture_id=%s err=%v", job.LectureID, err)
	}
	if err := p.results.MarkError(ctx, job.LectureID, job.UserID, msg); err != nil {
		p.log.WithContext(ctx).Errorf("mark results error failed: lecture_id=%s err=%v", job.LectureID, err)
	}
}

func (p *PipelineService) cleanup(ctx context.Context, run *pipelineRun) {
	if err := os.RemoveAll(run.workDir); err != nil {
		p.log.WithContext(ctx).Warnf("remove work dir failed: dir=%s err=%v", run.workDir, err)
	}
}
