package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/mediastore"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// TranscriptText 是按语言取回的转写纯文本。
type TranscriptText struct {
	LectureID string
	Language  po.Language
	Text      string
	Cached    bool
}

// LectureQueryService 封装课程处理结果的只读用例（含按需翻译）。
type LectureQueryService struct {
	cfg          configloader.PipelineConfig
	transcripts  TranscriptStore
	translations TranslationStore
	statuses     StatusStore
	results      ResultsStore
	translator   *Translator
	media        mediastore.Store
	log          *log.Helper
}

// NewLectureQueryService 构造查询服务。
func NewLectureQueryService(cfg configloader.PipelineConfig, transcripts TranscriptStore, translations TranslationStore, statuses StatusStore, results ResultsStore, translator *Translator, store mediastore.Store, logger log.Logger) *LectureQueryService {
	return &LectureQueryService{
		cfg:          cfg,
		transcripts:  transcripts,
		translations: translations,
		statuses:     statuses,
		results:      results,
		translator:   translator,
		media:        store,
		log:          log.NewHelper(logger),
	}
}

// GetStatus 返回处理状态。
func (s *LectureQueryService) GetStatus(ctx context.Context, userID, lectureID string) (*vo.LectureStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	status, err := s.statuses.Get(ctx, lectureID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrStatusNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, s.queryFailed(ctx, "get status", lectureID, err)
	}
	return vo.NewLectureStatus(status), nil
}

// GetTranscript 返回指定语言的转写。language 为空时使用上传时的首选语言，再退回 english；
// 非 english 的译文不存在时同步生成并缓存。
func (s *LectureQueryService) GetTranscript(ctx context.Context, userID, lectureID, language string) (*TranscriptText, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(language) == "" {
		language = string(s.preferredLanguage(ctx, userID, lectureID))
	}
	lang, ok := po.ParseLanguage(language)
	if !ok {
		return nil, UnsupportedLanguage(language)
	}

	record, err := s.transcripts.Get(ctx, lectureID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTranscriptNotFound) {
			return nil, ErrTranscriptNotFound
		}
		return nil, s.queryFailed(ctx, "get transcript", lectureID, err)
	}
	if lang.IsSource() {
		return &TranscriptText{LectureID: lectureID, Language: lang, Text: record.PlainTranscript}, nil
	}

	translation, cached, err := s.translator.Translate(ctx, lectureID, userID, record.PlainTranscript, lang, s.cfg.TranslationWindow)
	if err != nil {
		s.log.WithContext(ctx).Errorf("lazy translation failed: lecture_id=%s language=%s err=%v", lectureID, lang, err)
		return nil, kerrors.InternalServer(ReasonTranslationFailed, "failed to translate transcript").WithCause(err)
	}
	return &TranscriptText{LectureID: lectureID, Language: lang, Text: translation.TranslatedText, Cached: cached}, nil
}

func (s *LectureQueryService) preferredLanguage(ctx context.Context, userID, lectureID string) po.Language {
	status, err := s.statuses.Get(ctx, lectureID, userID)
	if err != nil || status.PreferredLanguage == "" {
		return po.LanguageEnglish
	}
	return status.PreferredLanguage
}

// GetResults 返回互动分析结果。记录缺失或标记为失败时均视为不存在。
func (s *LectureQueryService) GetResults(ctx context.Context, userID, lectureID string) (*vo.EngagementResults, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	result, err := s.results.Get(ctx, lectureID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultsNotFound) {
			return nil, ErrResultsNotFound
		}
		return nil, s.queryFailed(ctx, "get results", lectureID, err)
	}
	if !result.Usable() {
		return nil, ErrResultsNotFound
	}
	return vo.NewEngagementResults(result), nil
}

// ListTranslations 列出可用语言：english 在首位，其后为已有译文的语言。
func (s *LectureQueryService) ListTranslations(ctx context.Context, userID, lectureID string) (*vo.AvailableTranslations, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(lectureID) == "" {
		return nil, invalidArgument("lecture_id parameter is required")
	}
	if _, err := s.transcripts.Get(ctx, lectureID, userID); err != nil {
		if errors.Is(err, repositories.ErrTranscriptNotFound) {
			return nil, ErrTranscriptNotFound
		}
		return nil, s.queryFailed(ctx, "get transcript", lectureID, err)
	}
	langs, err := s.availableLanguages(ctx, userID, lectureID)
	if err != nil {
		return nil, err
	}
	return &vo.AvailableTranslations{LectureID: lectureID, AvailableLanguages: langs}, nil
}

func (s *LectureQueryService) availableLanguages(ctx context.Context, userID, lectureID string) ([]string, error) {
	stored, err := s.translations.ListLanguages(ctx, lectureID, userID)
	if err != nil {
		return nil, s.queryFailed(ctx, "list translations", lectureID, err)
	}
	out := make([]string, 0, len(stored)+1)
	out = append(out, string(po.LanguageEnglish))
	for _, lang := range stored {
		if !lang.IsSource() {
			out = append(out, string(lang))
		}
	}
	return out, nil
}

// GetMediaURL 为源视频签发限时下载链接，仅 GCS 后端支持。
func (s *LectureQueryService) GetMediaURL(ctx context.Context, userID, lectureID string) (*vo.MediaURL, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.statuses.Get(ctx, lectureID, userID); err != nil {
		if errors.Is(err, repositories.ErrStatusNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, s.queryFailed(ctx, "get status", lectureID, err)
	}
	url, expiresAt, err := s.media.SignedURL(ctx, mediastore.ObjectKey(userID, lectureID))
	switch {
	case errors.Is(err, mediastore.ErrSigningUnsupported):
		return nil, kerrors.NotFound(ReasonSigningNotConfigured, "signed media urls are not available")
	case errors.Is(err, mediastore.ErrNotFound):
		return nil, kerrors.NotFound(ReasonMediaUnavailable, "source video not found")
	case err != nil:
		return nil, s.queryFailed(ctx, "sign media url", lectureID, err)
	}
	return &vo.MediaURL{LectureID: lectureID, URL: url, ExpiresAt: expiresAt}, nil
}

func (s *LectureQueryService) queryFailed(ctx context.Context, op, lectureID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithContext(ctx).Warnf("%s timeout: lecture_id=%s", op, lectureID)
		return kerrors.GatewayTimeout(ReasonQueryTimeout, "query timeout")
	}
	s.log.WithContext(ctx).Errorf("%s failed: lecture_id=%s err=%v", op, lectureID, err)
	return kerrors.InternalServer(ReasonQueryFailed, "failed to query lecture").WithCause(fmt.Errorf("%s: %w", op, err))
}
