package engine

import "github.com/abhisek/pathwise/internal/content"

// Effect is work Transition asks the caller to perform.
type Effect interface {
	isEffect()
}

// LoadEntry fetches the goal's entry questions.
type LoadEntry struct {
	GoalID string
}

// GradeEntryItem grades open entry item Index.
type GradeEntryItem struct {
	Index    int
	Question content.EntryQuestion
	Answer   string
}

// AnalyzeEntry requests a narrative for a scored entry attempt.
type AnalyzeEntry struct {
	Result EntryResult
}

// GenerateReflection requests a reflection question for step Step.
type GenerateReflection struct {
	Step int
}

// AnalyzeReflection requests feedback on the answer for step Step.
type AnalyzeReflection struct {
	Step     int
	Question string
	Answer   string
}

// GenerateFinal requests Count fresh final questions for attempt Attempt.
type GenerateFinal struct {
	Attempt int
	Count   int
}

// RecordProgress signals the progress tracker. Fire and forget.
type RecordProgress struct {
	GoalID     string
	Percentage int
	Status     string
}

// LogAttempt appends a scored attempt to the history. Fire and forget.
type LogAttempt struct {
	Stage       Stage
	Attempt     int
	Correct     int
	Total       int
	Percentage  int
	Passed      bool
	Proficiency int
}

func (LoadEntry) isEffect()          {}
func (GradeEntryItem) isEffect()     {}
func (AnalyzeEntry) isEffect()       {}
func (GenerateReflection) isEffect() {}
func (AnalyzeReflection) isEffect()  {}
func (GenerateFinal) isEffect()      {}
func (RecordProgress) isEffect()     {}
func (LogAttempt) isEffect()         {}
