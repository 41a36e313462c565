package po

import "time"

// RunStatus is the coarse state of a lecture run.
type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusError      RunStatus = "error"
)

// TranslationState is the sub-state of an explicit translation request.
type TranslationState string

const (
	TranslationStateNone       TranslationState = ""
	TranslationStateProcessing TranslationState = "processing"
	TranslationStateCompleted  TranslationState = "completed"
	TranslationStateError      TranslationState = "error"
)

// ProcessingStatus maps lecture.processing_status. It is the only externally observable
// progress signal of a run.
type ProcessingStatus struct {
	LectureID         string
	UserID            string
	Status            RunStatus
	Stage             string // stage label, e.g. "translating_to_hindi"
	Progress          int
	Error             *string
	PreferredLanguage Language

	TranslationStatus   TranslationState
	TranslationLanguage *Language
	TranslationProgress int
	TranslationError    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the run has finished, successfully or not.
func (s *ProcessingStatus) Terminal() bool {
	return s != nil && (s.Status == RunStatusCompleted || s.Status == RunStatusError)
}
