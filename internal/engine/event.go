package engine

import (
	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
)

// Event is an input to Transition: a learner action or the completion of an
// Effect.
type Event interface {
	isEvent()
}

// Learner actions.

// SubmitEntry submits the entry test. Selections and Answers are indexed
// like the questions; closed items use Selections, open items Answers.
type SubmitEntry struct {
	Selections []int
	Answers    []string
}

// SkipEntry leaves an unavailable entry test for the first step.
type SkipEntry struct{}

// MarkDone finishes a step's content. Selection answers the step exercise,
// -1 when unanswered or absent.
type MarkDone struct {
	Selection int
}

// SubmitReflection submits the reflection answer.
type SubmitReflection struct {
	Answer string
}

// Continue leaves the feedback of a step.
type Continue struct{}

// SubmitFinal submits the final test.
type SubmitFinal struct {
	Selections []int
}

// RetryFinal starts a new final test attempt.
type RetryFinal struct{}

func (SubmitEntry) isEvent()      {}
func (SkipEntry) isEvent()        {}
func (MarkDone) isEvent()         {}
func (SubmitReflection) isEvent() {}
func (Continue) isEvent()         {}
func (SubmitFinal) isEvent()      {}
func (RetryFinal) isEvent()       {}

// Completion events carry the token of the session that started the work.
// Transition ignores completions addressed to another session.

// Completion is embedded in every completion event.
type Completion struct {
	Token guard.Token
}

// Owner returns the token the work was started under.
func (c Completion) Owner() guard.Token { return c.Token }

// EntryLoaded delivers the entry questions. Err and an empty set both make
// the entry test unavailable.
type EntryLoaded struct {
	Completion
	Questions []content.EntryQuestion
	Err       error
}

// EntryItemGraded delivers the verdict for open item Index.
type EntryItemGraded struct {
	Completion
	Index int
	Grade gateway.Grade
}

// EntryAnalyzed delivers the entry narrative.
type EntryAnalyzed struct {
	Completion
	Analysis gateway.EntryAnalysis
}

// ReflectionQuestionReady delivers the question for step Step.
type ReflectionQuestionReady struct {
	Completion
	Step     int
	Question string
}

// ReflectionAnalyzed delivers the feedback for step Step.
type ReflectionAnalyzed struct {
	Completion
	Step     int
	Feedback gateway.ReflectionFeedback
}

// FinalReady delivers the questions for final attempt Attempt, or the error
// that prevented generating them.
type FinalReady struct {
	Completion
	Attempt   int
	Questions []gateway.ClosedQuestion
	Err       error
}

func (EntryLoaded) isEvent()             {}
func (EntryItemGraded) isEvent()         {}
func (EntryAnalyzed) isEvent()           {}
func (ReflectionQuestionReady) isEvent() {}
func (ReflectionAnalyzed) isEvent()      {}
func (FinalReady) isEvent()              {}

// owned is implemented by completion events.
type owned interface {
	Owner() guard.Token
}
