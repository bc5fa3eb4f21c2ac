package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/logger"
)

var errDown = errors.New("service down")

// failing fails every call.
type failing struct{}

func (failing) ReflectionQuestion(context.Context, ReflectionQuestionRequest) (string, error) {
	return "", errDown
}
func (failing) AnalyzeReflection(context.Context, AnalyzeReflectionRequest) (ReflectionFeedback, error) {
	return ReflectionFeedback{}, errDown
}
func (failing) FinalTest(context.Context, FinalTestRequest) ([]ClosedQuestion, error) {
	return nil, errDown
}
func (failing) GradeEntryAnswer(context.Context, GradeEntryRequest) (Grade, error) {
	return Grade{Correct: true}, errDown
}
func (failing) AnalyzeEntry(context.Context, AnalyzeEntryRequest) (EntryAnalysis, error) {
	return EntryAnalysis{}, errDown
}
func (failing) PracticeQuestion(context.Context, PracticeQuestionRequest) (ClosedQuestion, error) {
	return ClosedQuestion{}, errDown
}

// slow blocks until the call's context is done.
type slow struct{ failing }

func (slow) ReflectionQuestion(ctx context.Context, _ ReflectionQuestionRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestResilient_Fallbacks(t *testing.T) {
	r := NewResilient(failing{}, time.Second, logger.Nop())
	ctx := context.Background()

	assert.Equal(t, DefaultReflectionQuestion(), r.ReflectionQuestion(ctx, ReflectionQuestionRequest{}))

	fb := r.AnalyzeReflection(ctx, AnalyzeReflectionRequest{})
	assert.Equal(t, DirectiveContinue, fb.Directive)
	assert.Empty(t, fb.Recommendation)
	assert.NotEmpty(t, fb.Narrative)

	grade := r.GradeEntryAnswer(ctx, GradeEntryRequest{})
	assert.False(t, grade.Correct, "a failed grading never counts as correct")

	a := r.AnalyzeEntry(ctx, AnalyzeEntryRequest{})
	assert.True(t, a.IsEmpty())
	assert.NotNil(t, a.Strengths)
}

func TestResilient_HardFailuresSurface(t *testing.T) {
	r := NewResilient(failing{}, time.Second, nil)

	qs, err := r.FinalTest(context.Background(), FinalTestRequest{Count: 5})
	require.ErrorIs(t, err, errDown)
	assert.Nil(t, qs)

	_, err = r.PracticeQuestion(context.Background(), PracticeQuestionRequest{})
	require.ErrorIs(t, err, errDown)
}

func TestResilient_Timeout(t *testing.T) {
	r := NewResilient(slow{}, 20*time.Millisecond, logger.Nop())

	start := time.Now()
	q := r.ReflectionQuestion(context.Background(), ReflectionQuestionRequest{})
	assert.Equal(t, DefaultReflectionQuestion(), q)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResilient_PassesThroughSuccess(t *testing.T) {
	c, srv := newTestClient(t, map[string]any{
		PathReflectionQuestion: QuestionResponse{Question: "What changed?"},
	})
	defer srv.Close()

	r := NewResilient(c, time.Second, logger.Nop())
	assert.Equal(t, "What changed?", r.ReflectionQuestion(context.Background(), ReflectionQuestionRequest{}))
}
