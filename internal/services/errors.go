package services

import (
	stderrors "errors"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/errors"
)

// 流水线错误分类。阶段失败统一包装为 StageError，调用方用 errors.Is 判断类别。
var (
	ErrMedia           = stderrors.New("media error")
	ErrTranscription   = stderrors.New("transcription error")
	ErrTranslation     = stderrors.New("translation error")
	ErrQuestionParse   = stderrors.New("question parse error")
	ErrAnalysis        = stderrors.New("analysis error")
	ErrExternalService = stderrors.New("external service error")
	ErrPersistence     = stderrors.New("persistence error")
)

// 对外错误原因码，随 kratos 错误一起返回给 HTTP 调用方。
const (
	ReasonLectureNotFound      = "LECTURE_NOT_FOUND"
	ReasonTranscriptNotFound   = "TRANSCRIPT_NOT_FOUND"
	ReasonResultsNotFound      = "RESULTS_NOT_FOUND"
	ReasonTranslationNotFound  = "TRANSLATION_NOT_FOUND"
	ReasonUnsupportedLanguage  = "UNSUPPORTED_LANGUAGE"
	ReasonInvalidArgument      = "INVALID_ARGUMENT"
	ReasonUnauthenticated      = "UNAUTHENTICATED"
	ReasonMediaUnavailable     = "MEDIA_UNAVAILABLE"
	ReasonTranslationFailed    = "TRANSLATION_FAILED"
	ReasonEnqueueFailed        = "ENQUEUE_FAILED"
	ReasonStoreMediaFailed     = "STORE_MEDIA_FAILED"
	ReasonQueryFailed          = "QUERY_FAILED"
	ReasonQueryTimeout         = "QUERY_TIMEOUT"
	ReasonSigningNotConfigured = "SIGNING_NOT_CONFIGURED"
)

var (
	ErrLectureNotFound     = errors.NotFound(ReasonLectureNotFound, "lecture not found")
	ErrTranscriptNotFound  = errors.NotFound(ReasonTranscriptNotFound, "transcript not found")
	ErrResultsNotFound     = errors.NotFound(ReasonResultsNotFound, "results not found")
	ErrTranslationNotFound = errors.NotFound(ReasonTranslationNotFound, "translation not found")
	ErrUnauthenticated     = errors.Unauthorized(ReasonUnauthenticated, "user identity is required")
)

// StageError 记录失败发生的阶段、错误类别与原始原因。
type StageError struct {
	Stage po.Stage
	Kind  error
	Err   error
}

// Error implements error.
func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap 同时暴露类别与原因。
func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stageFailure(stage po.Stage, kind, err error) error {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// UnsupportedLanguage 构造 400 错误。
func UnsupportedLanguage(raw string) *errors.Error {
	return errors.BadRequest(ReasonUnsupportedLanguage,
		fmt.Sprintf("unsupported language %q; supported languages: %s", raw, supportedLanguageList()))
}

func invalidArgument(msg string) *errors.Error {
	return errors.BadRequest(ReasonInvalidArgument, msg)
}

func supportedLanguageList() string {
	out := ""
	for i, lang := range po.SupportedLanguages {
		if i > 0 {
			out += ", "
		}
		out += string(lang)
	}
	return out
}
