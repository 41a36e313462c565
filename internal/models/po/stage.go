package po

import (
	"errors"
	"fmt"
	"strings"
)

// Stage is a step of the lecture pipeline.
type Stage string

const (
	StageUploading         Stage = "uploading"
	StageExtractingAudio   Stage = "extracting_audio"
	StageSplittingAudio    Stage = "splitting_audio"
	StageTranscribing      Stage = "transcribing"
	StageSavingTranscripts Stage = "saving_transcripts"
	StageTranslating       Stage = "translating"
	StageAnalyzingVideo    Stage = "analyzing_video"
	StageCompleted         Stage = "completed"
	StageError             Stage = "error"
)

const translatingLabelPrefix = "translating_to_"

// ErrIllegalTransition is returned when a stage change is not in the transition table.
var ErrIllegalTransition = errors.New("illegal stage transition")

var stageProgress = map[Stage]int{
	StageUploading:         0,
	StageExtractingAudio:   10,
	StageSplittingAudio:    20,
	StageTranscribing:      30,
	StageSavingTranscripts: 60,
	StageTranslating:       65,
	StageAnalyzingVideo:    70,
	StageCompleted:         100,
	StageError:             0,
}

var stageTransitions = map[Stage][]Stage{
	StageUploading:         {StageExtractingAudio},
	StageExtractingAudio:   {StageSplittingAudio},
	StageSplittingAudio:    {StageTranscribing},
	StageTranscribing:      {StageSavingTranscripts},
	StageSavingTranscripts: {StageTranslating, StageAnalyzingVideo},
	StageTranslating:       {StageAnalyzingVideo},
	StageAnalyzingVideo:    {StageCompleted},
}

// Progress returns the milestone persisted when the stage starts.
func (s Stage) Progress() int {
	return stageProgress[s]
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// Label renders the persisted stage name. Only translating carries the target language.
func (s Stage) Label(lang Language) string {
	if s == StageTranslating && lang != "" {
		return translatingLabelPrefix + string(lang)
	}
	return string(s)
}

// ParseStage maps a persisted label back to its stage.
func ParseStage(label string) (Stage, bool) {
	if strings.HasPrefix(label, translatingLabelPrefix) {
		return StageTranslating, true
	}
	s := Stage(label)
	if _, ok := stageProgress[s]; ok {
		return s, true
	}
	return "", false
}

// CanTransition reports whether from -> to is allowed. Error is reachable from every
// non-terminal stage.
func CanTransition(from, to Stage) bool {
	if from.Terminal() {
		return false
	}
	if to == StageError {
		return true
	}
	for _, next := range stageTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StageMachine tracks the current stage of one run and enforces the transition table.
type StageMachine struct {
	current Stage
}

// NewStageMachine starts a run in the uploading stage.
func NewStageMachine() *StageMachine {
	return &StageMachine{current: StageUploading}
}

// Current returns the active stage.
func (m *StageMachine) Current() Stage {
	return m.current
}

// Advance moves to the next stage or returns ErrIllegalTransition.
func (m *StageMachine) Advance(to Stage) error {
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.current, to)
	}
	m.current = to
	return nil
}
