// Package vo 定义视图对象（View Objects）：Service 层返回，经 Views 层转换为 HTTP 响应，
// 隔离持久化结构。
package vo

import (
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
)

// LectureStatus 是处理状态记录的对外视图。
type LectureStatus struct {
	LectureID         string    `json:"lecture_id"`
	Status            string    `json:"status"`
	Stage             string    `json:"stage"`
	Progress          int       `json:"progress"`
	Error             *string   `json:"error"`
	PreferredLanguage string    `json:"preferred_language"`
	UpdatedAt         time.Time `json:"updated_at"`

	// 翻译子状态
	TranslationStatus   string  `json:"translation_status,omitempty"`
	TranslationLanguage *string `json:"translation_language,omitempty"`
	TranslationProgress int     `json:"translation_progress,omitempty"`
	TranslationError    *string `json:"translation_error,omitempty"`
}

// NewLectureStatus 从状态记录构造视图。
func NewLectureStatus(s *po.ProcessingStatus) *LectureStatus {
	if s == nil {
		return nil
	}
	out := &LectureStatus{
		LectureID:           s.LectureID,
		Status:              string(s.Status),
		Stage:               s.Stage,
		Progress:            s.Progress,
		Error:               s.Error,
		PreferredLanguage:   string(s.PreferredLanguage),
		UpdatedAt:           s.UpdatedAt,
		TranslationStatus:   string(s.TranslationStatus),
		TranslationProgress: s.TranslationProgress,
		TranslationError:    s.TranslationError,
	}
	if s.TranslationLanguage != nil {
		lang := string(*s.TranslationLanguage)
		out.TranslationLanguage = &lang
	}
	return out
}

// SameProgress 判断两次快照的 status/stage/progress 是否一致，用于 WebSocket 去重推送。
func (s *LectureStatus) SameProgress(other *LectureStatus) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Status == other.Status && s.Stage == other.Stage && s.Progress == other.Progress &&
		s.TranslationStatus == other.TranslationStatus && s.TranslationProgress == other.TranslationProgress
}

// Terminal 表示运行已结束。
func (s *LectureStatus) Terminal() bool {
	return s != nil && (s.Status == string(po.RunStatusCompleted) || s.Status == string(po.RunStatusError))
}

// TranslationStatus 是显式翻译请求的进度视图。
type TranslationStatus struct {
	LectureID string  `json:"lecture_id"`
	Language  string  `json:"language"`
	Status    string  `json:"status"`
	Progress  int     `json:"progress"`
	Error     *string `json:"error"`
}

// AvailableTranslations 列出已有的转写语言，english 始终在首位。
type AvailableTranslations struct {
	LectureID          string   `json:"lecture_id"`
	AvailableLanguages []string `json:"available_languages"`
}

// EngagementResults 是互动分析结果视图。
type EngagementResults struct {
	LectureID            string                       `json:"lecture_id"`
	QuestionResults      map[string]po.QuestionResult `json:"question_results"`
	QuestionsCompleted   []string                     `json:"questions_completed"`
	QuestionsForRevision []string                     `json:"questions_for_revision"`
	TopicsCompleted      []string                     `json:"topics_completed"`
	TopicsForRevision    []string                     `json:"topics_for_revision"`
	UpdatedAt            time.Time                    `json:"updated_at"`
}

// NewEngagementResults 构造视图；失败的运行记录不应走到这里。
func NewEngagementResults(r *po.EngagementResult) *EngagementResults {
	if r == nil {
		return nil
	}
	return &EngagementResults{
		LectureID:            r.LectureID,
		QuestionResults:      r.QuestionResults,
		QuestionsCompleted:   append([]string{}, r.QuestionsCompleted...),
		QuestionsForRevision: append([]string{}, r.QuestionsForRevision...),
		TopicsCompleted:      append([]string{}, r.TopicsCompleted...),
		TopicsForRevision:    append([]string{}, r.TopicsForRevision...),
		UpdatedAt:            r.UpdatedAt,
	}
}

// UploadAccepted 是上传受理后的响应。
type UploadAccepted struct {
	LectureID         string `json:"lecture_id"`
	Status            string `json:"status"`
	JobID             string `json:"job_id"`
	PreferredLanguage string `json:"preferred_language"`
	Message           string `json:"message"`
}

// TranslationAccepted 是翻译请求的响应。
type TranslationAccepted struct {
	LectureID string `json:"lecture_id"`
	Language  string `json:"language"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// MediaURL 是视频签名下载链接。
type MediaURL struct {
	LectureID string    `json:"lecture_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
