// Package po defines persistence objects mapped to the lecture schema tables.
package po

import (
	"strings"
	"time"
)

// Language is a supported transcript language.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageHindi   Language = "hindi"
	LanguageTelugu  Language = "telugu"
)

// SupportedLanguages lists the languages accepted by upload and translation requests.
var SupportedLanguages = []Language{LanguageEnglish, LanguageHindi, LanguageTelugu}

// ParseLanguage normalizes raw input. Empty input means english.
func ParseLanguage(raw string) (Language, bool) {
	v := Language(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return LanguageEnglish, true
	}
	for _, lang := range SupportedLanguages {
		if lang == v {
			return v, true
		}
	}
	return "", false
}

// IsSource reports whether the language is the transcript's original language.
func (l Language) IsSource() bool {
	return l == LanguageEnglish
}

// Segment is one transcribed phrase with lecture-global timestamps in seconds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptRecord maps lecture.transcripts.
type TranscriptRecord struct {
	LectureID       string
	UserID          string
	Segments        []Segment
	PlainTranscript string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TranslationRecord maps lecture.translations.
type TranslationRecord struct {
	LectureID      string
	UserID         string
	Language       Language
	TranslatedText string
	CreatedAt      time.Time
}

// QuestionInterval marks where the instructor invites yes and no responses.
type QuestionInterval struct {
	QuestionText string
	YesTimestamp float64
	NoTimestamp  float64
}

// QuestionResult is the aggregated response counts for one question.
type QuestionResult struct {
	Yes         int `json:"yes"`
	No          int `json:"no"`
	NotAnswered int `json:"not_answered"`
}

// EngagementResult maps lecture.engagement_results. A non-nil Error marks a failed run.
type EngagementResult struct {
	LectureID            string
	UserID               string
	QuestionResults      map[string]QuestionResult
	QuestionsCompleted   []string
	QuestionsForRevision []string
	TopicsCompleted      []string
	TopicsForRevision    []string
	Error                *string
	UpdatedAt            time.Time
}

// Usable reports whether the record holds a successful analysis.
func (r *EngagementResult) Usable() bool {
	return r != nil && r.Error == nil
}
