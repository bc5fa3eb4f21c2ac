// Package engine is the learning path state machine. A Session holds exactly
// one State variant; Transition is a pure function from (Session, Event) to
// the next Session and the Effects the caller must perform. The Executor
// performs Effects and turns their outcomes back into Events.
package engine

import (
	"slices"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
)

// Stage is one of the four top-level phases of a learning path.
type Stage int

const (
	StageEntry Stage = iota
	StageSteps
	StageFinal
	StageResult
)

func (s Stage) String() string {
	switch s {
	case StageEntry:
		return "entry"
	case StageSteps:
		return "steps"
	case StageFinal:
		return "final"
	case StageResult:
		return "result"
	}
	return "unknown"
}

// State is a sub-state of a stage. The set of implementations is closed.
type State interface {
	Stage() Stage
	// Busy reports whether a gateway call is outstanding. Learner actions
	// are ignored while busy.
	Busy() bool
	isState()
}

type idle struct{}

func (idle) Busy() bool { return false }
func (idle) isState()   {}

type busy struct{}

func (busy) Busy() bool { return true }
func (busy) isState()   {}

// Entry stage.

// EntryLoading waits for the goal's entry questions.
type EntryLoading struct{ busy }

// EntryQuestionSet shows the entry questions. Selections holds the chosen
// option per closed item (-1 unanswered), Answers the text per open item.
// Warnings holds a per-question validation message, "" when fine.
type EntryQuestionSet struct {
	idle
	Questions  []content.EntryQuestion
	Selections []int
	Answers    []string
	Warnings   []string
}

// HasWarnings reports whether the last submit was rejected.
func (s EntryQuestionSet) HasWarnings() bool {
	return slices.ContainsFunc(s.Warnings, func(w string) bool { return w != "" })
}

// EntryGrading grades open answers one at a time. Results is indexed like
// Questions; Pending lists the open items still to grade, in order.
type EntryGrading struct {
	busy
	Questions []content.EntryQuestion
	Answers   []string
	Results   []ItemResult
	Pending   []int
}

// EntryAnalyzing waits for the narrative analysis of a scored attempt.
type EntryAnalyzing struct {
	busy
	Result EntryResult
}

// EntryUnavailable means no entry questions could be loaded. The learner may
// skip to the first step.
type EntryUnavailable struct {
	idle
	Reason string
}

// Steps stage.

// StepContent shows a step. Review is set when reflection feedback sent the
// learner back to the same step.
type StepContent struct {
	idle
	Index  int
	Review bool
}

// ReflectionLoading waits for the step's reflection question.
type ReflectionLoading struct {
	busy
	Index int
}

// ReflectionQuestion waits for the learner's answer. Warning is set when the
// last answer was too short.
type ReflectionQuestion struct {
	idle
	Index   int
	Warning string
}

// ReflectionSubmitting waits for the reflection analysis.
type ReflectionSubmitting struct {
	busy
	Index int
}

// StepFeedback shows the analysis and waits for Continue.
type StepFeedback struct {
	idle
	Index int
}

// Final stage.

// FinalLoading waits for a freshly generated final test.
type FinalLoading struct {
	busy
	Attempt int
}

// FinalQuestionSet shows the final test.
type FinalQuestionSet struct {
	idle
	Attempt   int
	Questions []gateway.ClosedQuestion
}

// FinalFailed means the final test could not be generated. It is terminal
// until the learner retries; there is no way around it.
type FinalFailed struct {
	idle
	Attempt int
	Err     string
}

// Result stage.

// ResultPassed is terminal.
type ResultPassed struct {
	idle
	Attempt int
}

// ResultFailed allows a retry with a new test.
type ResultFailed struct {
	idle
	Attempt int
}

func (EntryLoading) Stage() Stage         { return StageEntry }
func (EntryQuestionSet) Stage() Stage     { return StageEntry }
func (EntryGrading) Stage() Stage         { return StageEntry }
func (EntryAnalyzing) Stage() Stage       { return StageEntry }
func (EntryUnavailable) Stage() Stage     { return StageEntry }
func (StepContent) Stage() Stage          { return StageSteps }
func (ReflectionLoading) Stage() Stage    { return StageSteps }
func (ReflectionQuestion) Stage() Stage   { return StageSteps }
func (ReflectionSubmitting) Stage() Stage { return StageSteps }
func (StepFeedback) Stage() Stage         { return StageSteps }
func (FinalLoading) Stage() Stage         { return StageFinal }
func (FinalQuestionSet) Stage() Stage     { return StageFinal }
func (FinalFailed) Stage() Stage          { return StageFinal }
func (ResultPassed) Stage() Stage         { return StageResult }
func (ResultFailed) Stage() Stage         { return StageResult }

// StepIndex returns the active step index for Steps stage states.
func StepIndex(st State) (int, bool) {
	switch v := st.(type) {
	case StepContent:
		return v.Index, true
	case ReflectionLoading:
		return v.Index, true
	case ReflectionQuestion:
		return v.Index, true
	case ReflectionSubmitting:
		return v.Index, true
	case StepFeedback:
		return v.Index, true
	}
	return 0, false
}
