// Package gateway is the learning path's only contact with the generation
// and grading service. Every request shape has a default value that stands
// in when the service fails, except the final test, which cannot be faked.
package gateway

import (
	"context"
	"fmt"

	"github.com/abhisek/pathwise/internal/scorer"
)

// ExcerptLimit bounds the step content sent with a reflection request.
const ExcerptLimit = 2000

// Directive is the branch decision returned by reflection analysis.
type Directive string

const (
	DirectiveContinue Directive = "continue"
	DirectiveRepeat   Directive = "repeat"
)

// ReflectionQuestionRequest asks for one reflection question about a step.
type ReflectionQuestionRequest struct {
	GoalText  string `json:"goal_text"`
	Excerpt   string `json:"excerpt"`
	StepIndex int    `json:"step_index"`
	StepCount int    `json:"step_count"`
}

// AnalyzeReflectionRequest asks for feedback on the learner's answer.
type AnalyzeReflectionRequest struct {
	GoalText string `json:"goal_text"`
	Excerpt  string `json:"excerpt"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ReflectionFeedback is the analysis of a reflection answer.
type ReflectionFeedback struct {
	Narrative      string    `json:"narrative"`
	Directive      Directive `json:"directive"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// FinalTestRequest asks for Count closed questions over the goal content.
type FinalTestRequest struct {
	GoalText string `json:"goal_text"`
	Excerpt  string `json:"excerpt"`
	Count    int    `json:"count"`
}

// Option is a candidate answer of a generated question.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// ClosedQuestion is a generated multiple choice item.
type ClosedQuestion struct {
	Stem    string   `json:"stem"`
	Options []Option `json:"options"`
}

// CorrectOption returns the index of the flagged option, or -1.
func (q ClosedQuestion) CorrectOption() int {
	for i, o := range q.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}

// GradeEntryRequest asks for a verdict on one open entry answer.
type GradeEntryRequest struct {
	Question  string `json:"question"`
	Reference string `json:"reference"`
	Answer    string `json:"answer"`
	Case      string `json:"case,omitempty"`
}

// Grade is the verdict on an open entry answer.
type Grade struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// AnalyzeEntryRequest asks for a narrative over the entry results.
type AnalyzeEntryRequest struct {
	GoalText   string                        `json:"goal_text"`
	Excerpt    string                        `json:"excerpt"`
	Results    []scorer.ItemResult           `json:"results"`
	Percentage int                           `json:"percentage"`
	Buckets    map[scorer.Level]scorer.Tally `json:"buckets"`
}

// EntryAnalysis is the narrative over an entry attempt.
type EntryAnalysis struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
	Recommendation string   `json:"recommendation"`
}

// withLists replaces missing strengths or gaps with empty lists.
func (a EntryAnalysis) withLists() EntryAnalysis {
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Gaps == nil {
		a.Gaps = []string{}
	}
	return a
}

// IsEmpty reports whether the analysis carries no content.
func (a EntryAnalysis) IsEmpty() bool {
	return a.Summary == "" && len(a.Strengths) == 0 && len(a.Gaps) == 0 && a.Recommendation == ""
}

// PracticeQuestionRequest asks for one drill question over a segment.
type PracticeQuestionRequest struct {
	GoalText     string `json:"goal_text"`
	Segment      string `json:"segment"`
	SegmentIndex int    `json:"segment_index"`
	SegmentCount int    `json:"segment_count"`
}

// Gateway is the request/response contract with the generation service.
// Implementations return errors freely; Resilient turns them into defaults.
type Gateway interface {
	ReflectionQuestion(ctx context.Context, req ReflectionQuestionRequest) (string, error)
	AnalyzeReflection(ctx context.Context, req AnalyzeReflectionRequest) (ReflectionFeedback, error)
	FinalTest(ctx context.Context, req FinalTestRequest) ([]ClosedQuestion, error)
	GradeEntryAnswer(ctx context.Context, req GradeEntryRequest) (Grade, error)
	AnalyzeEntry(ctx context.Context, req AnalyzeEntryRequest) (EntryAnalysis, error)
	PracticeQuestion(ctx context.Context, req PracticeQuestionRequest) (ClosedQuestion, error)
}

// DefaultReflectionQuestion is asked when no question could be generated.
func DefaultReflectionQuestion() string {
	return "In your own words, what is the most important idea in this step, and where would you apply it?"
}

// DefaultReflectionFeedback acknowledges the answer and lets the learner
// move on.
func DefaultReflectionFeedback() ReflectionFeedback {
	return ReflectionFeedback{
		Narrative: "Thanks for your reflection. Keep these ideas in mind as you continue.",
		Directive: DirectiveContinue,
	}
}

// DefaultGrade marks an answer incorrect when it could not be graded.
func DefaultGrade() Grade {
	return Grade{
		Correct:  false,
		Feedback: "This answer could not be evaluated automatically. Compare it with the reference answer.",
	}
}

// EmptyEntryAnalysis is a well-formed analysis with every field blank.
func EmptyEntryAnalysis() EntryAnalysis {
	return EntryAnalysis{Strengths: []string{}, Gaps: []string{}}
}

// ErrInvalidOutput reports decoded output that fails a semantic check.
type ErrInvalidOutput struct {
	Shape  string
	Reason string
}

func (e *ErrInvalidOutput) Error() string {
	return fmt.Sprintf("invalid %s output: %s", e.Shape, e.Reason)
}

// ValidateQuestions checks that every question has a stem, at least two
// options and exactly one correct option. want <= 0 skips the count check.
func ValidateQuestions(shape string, qs []ClosedQuestion, want int) error {
	if len(qs) == 0 {
		return &ErrInvalidOutput{Shape: shape, Reason: "no questions"}
	}
	if want > 0 && len(qs) != want {
		return &ErrInvalidOutput{Shape: shape, Reason: fmt.Sprintf("got %d questions, want %d", len(qs), want)}
	}
	for i, q := range qs {
		if q.Stem == "" {
			return &ErrInvalidOutput{Shape: shape, Reason: fmt.Sprintf("question %d has no stem", i+1)}
		}
		if len(q.Options) < 2 {
			return &ErrInvalidOutput{Shape: shape, Reason: fmt.Sprintf("question %d has %d options", i+1, len(q.Options))}
		}
		n := 0
		for _, o := range q.Options {
			if o.Correct {
				n++
			}
		}
		if n != 1 {
			return &ErrInvalidOutput{Shape: shape, Reason: fmt.Sprintf("question %d has %d correct options", i+1, n)}
		}
	}
	return nil
}
