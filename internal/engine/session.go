package engine

import (
	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/scorer"
)

// DefaultFinalQuestions is the final test length when Options leaves it 0.
const DefaultFinalQuestions = 5

// ItemResult is the graded outcome of one entry question.
type ItemResult = scorer.ItemResult

// EntryResult is one scored entry attempt.
type EntryResult struct {
	Results     []ItemResult
	Correct     int
	Total       int
	Percentage  int
	Buckets     map[scorer.Level]scorer.Tally
	Proficiency int
	Analysis    gateway.EntryAnalysis
}

// FinalResult is one scored final attempt.
type FinalResult struct {
	Attempt    int
	Correct    int
	Total      int
	Percentage int
	Passed     bool
}

// ExerciseOutcome is the auto-submitted exercise of a step.
type ExerciseOutcome struct {
	Selected int
	Correct  bool
}

// Reflection is the reflection round of the active step.
type Reflection struct {
	Exercise *ExerciseOutcome
	Question string
	Answer   string
	Feedback *gateway.ReflectionFeedback
}

// Options tunes a session.
type Options struct {
	// AnalyzeEntry requests a narrative analysis after the entry test.
	AnalyzeEntry bool
	// FinalQuestions is the final test length.
	FinalQuestions int
}

// Session is the root aggregate of one learning path view. It is a value;
// Transition returns a new Session rather than mutating its input. Steps
// are shared and read-only.
type Session struct {
	Goal       content.Goal
	Steps      []content.Step
	Token      guard.Token
	Options    Options
	State      State
	Reflection Reflection
	Entry      *EntryResult
	Final      *FinalResult
	// Attempt numbers final test attempts from 1.
	Attempt int
}

// Start creates a session for goal owned by token and returns the effects
// that load the entry test.
func Start(goal content.Goal, steps []content.Step, token guard.Token, opts Options) (Session, []Effect) {
	if opts.FinalQuestions <= 0 {
		opts.FinalQuestions = DefaultFinalQuestions
	}
	s := Session{
		Goal:    goal,
		Steps:   steps,
		Token:   token,
		Options: opts,
		State:   EntryLoading{},
	}
	return s, []Effect{LoadEntry{GoalID: goal.ID}}
}

// Step returns the active step, if the session is in the Steps stage.
func (s Session) Step() (content.Step, int, bool) {
	i, ok := StepIndex(s.State)
	if !ok || i < 0 || i >= len(s.Steps) {
		return content.Step{}, 0, false
	}
	return s.Steps[i], i, true
}

// IsLastStep reports whether i is the final step index.
func (s Session) IsLastStep(i int) bool {
	return i == len(s.Steps)-1
}
