package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// Purposes label gateway calls in the request log.
const (
	PurposeReflectionQuestion = "reflection-question"
	PurposeReflectionAnalysis = "reflection-analysis"
	PurposeFinalTest          = "final-test"
	PurposeEntryGrade         = "entry-grade"
	PurposeEntryAnalysis      = "entry-analysis"
	PurposePracticeQuestion   = "practice-question"
)

// WithPurpose attaches a purpose label to ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose label of ctx, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
