package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// 翻译子状态取值之外的对外状态。
const (
	TranslationNotStarted = "not_started"
)

// TranslationService 处理显式翻译请求：受理、查询进度，以及在 worker 中执行翻译任务。
type TranslationService struct {
	cfg          configloader.PipelineConfig
	transcripts  TranscriptStore
	translations TranslationStore
	statuses     StatusStore
	translator   *Translator
	queue        JobEnqueuer
	log          *log.Helper
	now          func() time.Time
}

// NewTranslationService 构造翻译服务。
func NewTranslationService(cfg configloader.PipelineConfig, transcripts TranscriptStore, translations TranslationStore, statuses StatusStore, translator *Translator, queue JobEnqueuer, logger log.Logger) (*TranslationService, error) {
	switch {
	case transcripts == nil || translations == nil || statuses == nil:
		return nil, errors.New("translation service: repositories are required")
	case translator == nil:
		return nil, errors.New("translation service: translator is required")
	case queue == nil:
		return nil, errors.New("translation service: job queue is required")
	}
	return &TranslationService{
		cfg:          cfg,
		transcripts:  transcripts,
		translations: translations,
		statuses:     statuses,
		translator:   translator,
		queue:        queue,
		now:          time.Now,
		log:          log.NewHelper(logger),
	}, nil
}

// RequestTranslation 受理翻译请求。返回 Status=completed 表示无需再做（200），
// Status=processing 表示已投递任务（202）。
func (s *TranslationService) RequestTranslation(ctx context.Context, userID, lectureID, language string) (*vo.TranslationAccepted, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(lectureID) == "" {
		return nil, invalidArgument("lecture_id is required")
	}
	lang, err := requireLanguage(language)
	if err != nil {
		return nil, err
	}

	if lang.IsSource() {
		return &vo.TranslationAccepted{
			LectureID: lectureID,
			Language:  string(lang),
			Status:    string(po.TranslationStateCompleted),
			Message:   "Original transcript already available in English",
		}, nil
	}

	switch _, err := s.translations.Get(ctx, lectureID, userID, lang); {
	case err == nil:
		return &vo.TranslationAccepted{
			LectureID: lectureID,
			Language:  string(lang),
			Status:    string(po.TranslationStateCompleted),
			Message:   fmt.Sprintf("Translation to %s already exists", lang),
		}, nil
	case !errors.Is(err, repositories.ErrTranslationNotFound):
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to query translation").WithCause(err)
	}

	if _, err := s.transcripts.Get(ctx, lectureID, userID); err != nil {
		if errors.Is(err, repositories.ErrTranscriptNotFound) {
			return nil, kerrors.NotFound(ReasonTranscriptNotFound, "original transcript not found")
		}
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to query transcript").WithCause(err)
	}

	if err := s.statuses.StartTranslation(ctx, lectureID, userID, lang); err != nil {
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to update translation status").WithCause(err)
	}
	job := &vo.PipelineJob{
		ID:         uuid.NewString(),
		Kind:       vo.JobKindTranslate,
		LectureID:  lectureID,
		UserID:     userID,
		Language:   string(lang),
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if ferr := s.statuses.FailTranslation(context.WithoutCancel(ctx), lectureID, userID, lang, err.Error()); ferr != nil {
			s.log.WithContext(ctx).Warnf("record translation failure: lecture_id=%s err=%v", lectureID, ferr)
		}
		return nil, kerrors.ServiceUnavailable(ReasonEnqueueFailed, "failed to schedule translation").WithCause(err)
	}

	s.log.WithContext(ctx).Infof("translation requested: lecture_id=%s language=%s job_id=%s", lectureID, lang, job.ID)
	return &vo.TranslationAccepted{
		LectureID: lectureID,
		Language:  string(lang),
		Status:    string(po.TranslationStateProcessing),
		Message:   fmt.Sprintf("Translation to %s initiated", lang),
	}, nil
}

// GetTranslationStatus 返回某语言的翻译进度。已有译文时总是 completed。
func (s *TranslationService) GetTranslationStatus(ctx context.Context, userID, lectureID, language string) (*vo.TranslationStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	lang, err := requireLanguage(language)
	if err != nil {
		return nil, err
	}
	completed := &vo.TranslationStatus{
		LectureID: lectureID,
		Language:  string(lang),
		Status:    string(po.TranslationStateCompleted),
		Progress:  repositories.TranslationProgressDone,
	}
	if lang.IsSource() {
		return completed, nil
	}

	switch _, err := s.translations.Get(ctx, lectureID, userID, lang); {
	case err == nil:
		return completed, nil
	case !errors.Is(err, repositories.ErrTranslationNotFound):
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to query translation").WithCause(err)
	}

	status, err := s.statuses.Get(ctx, lectureID, userID)
	switch {
	case errors.Is(err, repositories.ErrStatusNotFound):
		status = nil
	case err != nil:
		return nil, kerrors.InternalServer(ReasonQueryFailed, "failed to query status").WithCause(err)
	}
	if status == nil || status.TranslationStatus == po.TranslationStateNone ||
		status.TranslationLanguage == nil || *status.TranslationLanguage != lang {
		return &vo.TranslationStatus{LectureID: lectureID, Language: string(lang), Status: TranslationNotStarted}, nil
	}
	return &vo.TranslationStatus{
		LectureID: lectureID,
		Language:  string(lang),
		Status:    string(status.TranslationStatus),
		Progress:  status.TranslationProgress,
		Error:     status.TranslationError,
	}, nil
}

// RunTranslation 执行 translate 任务。失败写入翻译子状态，运行状态不受影响。
func (s *TranslationService) RunTranslation(ctx context.Context, job *vo.PipelineJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("translation job: %w", err)
	}
	lang, ok := po.ParseLanguage(job.Language)
	if !ok || lang.IsSource() {
		return fmt.Errorf("translation job: unsupported language %q", job.Language)
	}

	err := s.translate(ctx, job, lang)
	if err != nil {
		s.log.WithContext(ctx).Errorw("msg", "translation job failed", "lecture_id", job.LectureID, "language", lang, "error", err)
		if ferr := s.statuses.FailTranslation(context.WithoutCancel(ctx), job.LectureID, job.UserID, lang, err.Error()); ferr != nil {
			s.log.WithContext(ctx).Warnf("record translation failure: lecture_id=%s err=%v", job.LectureID, ferr)
		}
		return err
	}
	if err := s.statuses.CompleteTranslation(ctx, job.LectureID, job.UserID, lang); err != nil {
		return fmt.Errorf("complete translation status: %w", err)
	}
	return nil
}

func (s *TranslationService) translate(ctx context.Context, job *vo.PipelineJob, lang po.Language) error {
	record, err := s.transcripts.Get(ctx, job.LectureID, job.UserID)
	if err != nil {
		return fmt.Errorf("%w: load transcript: %w", ErrTranslation, err)
	}
	_, _, err = s.translator.Translate(ctx, job.LectureID, job.UserID, record.PlainTranscript, lang, s.cfg.TranslationWindow)
	return err
}

func requireLanguage(raw string) (po.Language, error) {
	if strings.TrimSpace(raw) == "" {
		return "", invalidArgument(fmt.Sprintf("valid language parameter is required; supported languages: %s", supportedLanguageList()))
	}
	lang, ok := po.ParseLanguage(raw)
	if !ok {
		return "", UnsupportedLanguage(raw)
	}
	return lang, nil
}
