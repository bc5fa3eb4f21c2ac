package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/store"
)

// fakeGateway records reflection excerpts and fails when err is set.
type fakeGateway struct {
	mu       sync.Mutex
	err      error
	excerpts []string
	final    []gateway.ClosedQuestion
}

func (f *fakeGateway) ReflectionQuestion(_ context.Context, req gateway.ReflectionQuestionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.excerpts = append(f.excerpts, req.Excerpt)
	if f.err != nil {
		return "", f.err
	}
	return "What stood out?", nil
}

func (f *fakeGateway) AnalyzeReflection(_ context.Context, req gateway.AnalyzeReflectionRequest) (gateway.ReflectionFeedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.excerpts = append(f.excerpts, req.Excerpt)
	if f.err != nil {
		return gateway.ReflectionFeedback{}, f.err
	}
	return gateway.ReflectionFeedback{Narrative: "good", Directive: gateway.DirectiveRepeat}, nil
}

func (f *fakeGateway) FinalTest(context.Context, gateway.FinalTestRequest) ([]gateway.ClosedQuestion, error) {
	return f.final, f.err
}

func (f *fakeGateway) GradeEntryAnswer(context.Context, gateway.GradeEntryRequest) (gateway.Grade, error) {
	if f.err != nil {
		return gateway.Grade{}, f.err
	}
	return gateway.Grade{Correct: true, Feedback: "yes"}, nil
}

func (f *fakeGateway) AnalyzeEntry(context.Context, gateway.AnalyzeEntryRequest) (gateway.EntryAnalysis, error) {
	if f.err != nil {
		return gateway.EntryAnalysis{}, f.err
	}
	return gateway.EntryAnalysis{Summary: "fine", Strengths: []string{}, Gaps: []string{}}, nil
}

func (f *fakeGateway) PracticeQuestion(context.Context, gateway.PracticeQuestionRequest) (gateway.ClosedQuestion, error) {
	return gateway.ClosedQuestion{}, f.err
}

type fakeEntries struct {
	qs  []content.EntryQuestion
	err error
}

func (f fakeEntries) EntryQuestions(context.Context, string) ([]content.EntryQuestion, error) {
	return f.qs, f.err
}

type fakeProgress struct {
	mu    sync.Mutex
	calls []RecordProgress
	ctxOK bool
}

func (f *fakeProgress) Record(ctx context.Context, goalID string, pct int, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxOK = ctx.Err() == nil
	f.calls = append(f.calls, RecordProgress{GoalID: goalID, Percentage: pct, Status: status})
}

type fakeAttempts struct {
	events []store.AttemptEventData
}

func (f *fakeAttempts) AppendAttempt(_ context.Context, data store.AttemptEventData) error {
	f.events = append(f.events, data)
	return nil
}

func newExecutor(gw *fakeGateway, steps []content.Step) (*Executor, *fakeProgress, *fakeAttempts) {
	p := &fakeProgress{}
	a := &fakeAttempts{}
	x := NewExecutor(ExecutorConfig{
		Gateway:  gateway.NewResilient(gw, time.Second, logger.Nop()),
		Entries:  fakeEntries{qs: []content.EntryQuestion{closedQ("q", 1, 0)}},
		Progress: p,
		Attempts: a,
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}, content.Goal{ID: "g1", Title: "Goal"}, steps)
	return x, p, a
}

func TestExecutor_LoadEntry(t *testing.T) {
	x, _, _ := newExecutor(&fakeGateway{}, testSteps)
	tok := guard.Token{Generation: 1}

	ev := x.Run(context.Background(), tok, LoadEntry{GoalID: "g1"})
	loaded, ok := ev.(EntryLoaded)
	require.True(t, ok)
	assert.Equal(t, tok, loaded.Owner())
	assert.Len(t, loaded.Questions, 1)
	assert.NoError(t, loaded.Err)
}

func TestExecutor_DegradedCallsUseFallbacks(t *testing.T) {
	x, _, _ := newExecutor(&fakeGateway{err: errors.New("down")}, testSteps)
	ctx := context.Background()
	tok := guard.Token{Generation: 1}

	q := x.Run(ctx, tok, GenerateReflection{Step: 0}).(ReflectionQuestionReady)
	assert.Equal(t, gateway.DefaultReflectionQuestion(), q.Question)

	fb := x.Run(ctx, tok, AnalyzeReflection{Step: 0, Question: "q", Answer: "long answer"}).(ReflectionAnalyzed)
	assert.Equal(t, gateway.DefaultReflectionFeedback(), fb.Feedback)

	g := x.Run(ctx, tok, GradeEntryItem{Index: 3, Question: openQ("o", 1), Answer: "abc"}).(EntryItemGraded)
	assert.Equal(t, 3, g.Index)
	assert.False(t, g.Grade.Correct)

	a := x.Run(ctx, tok, AnalyzeEntry{}).(EntryAnalyzed)
	assert.True(t, a.Analysis.IsEmpty())

	final := x.Run(ctx, tok, GenerateFinal{Attempt: 2, Count: 5}).(FinalReady)
	assert.Error(t, final.Err)
	assert.Equal(t, 2, final.Attempt)
}

func TestExecutor_LongStepRotatesSegments(t *testing.T) {
	long := strings.Repeat("word ", 1500) // four segments
	steps := []content.Step{{Title: "Long", Blocks: []content.Block{{Kind: content.BlockText, Body: long}}}}
	gw := &fakeGateway{}
	x, _, _ := newExecutor(gw, steps)
	tok := guard.Token{Generation: 1}

	for range 3 {
		x.Run(context.Background(), tok, GenerateReflection{Step: 0})
	}
	x.Run(context.Background(), tok, AnalyzeReflection{Step: 0, Question: "q", Answer: "a"})

	require.Len(t, gw.excerpts, 4)
	assert.Equal(t, gw.excerpts[2], gw.excerpts[3], "analysis sees the excerpt the question came from")
	seen := map[string]bool{}
	for _, e := range gw.excerpts[:3] {
		assert.LessOrEqual(t, len([]rune(e)), gateway.ExcerptLimit)
		seen[e] = true
	}
	assert.Len(t, seen, 3, "no segment repeats within a pass")
}

func TestExecutor_ShortStepSentWhole(t *testing.T) {
	gw := &fakeGateway{}
	x, _, _ := newExecutor(gw, testSteps)
	x.Run(context.Background(), guard.Token{Generation: 1}, GenerateReflection{Step: 1})
	require.Len(t, gw.excerpts, 1)
	assert.Equal(t, testSteps[1].Text(), gw.excerpts[0])
}

func TestExecutor_SideEffectsOutliveSession(t *testing.T) {
	x, p, a := newExecutor(&fakeGateway{}, testSteps)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tok := guard.Token{Generation: 7}

	assert.Nil(t, x.Run(ctx, tok, RecordProgress{GoalID: "g1", Percentage: 100, Status: StatusCompleted}))
	assert.Nil(t, x.Run(ctx, tok, LogAttempt{Stage: StageFinal, Attempt: 1, Correct: 4, Total: 5, Percentage: 80, Passed: true}))

	require.Len(t, p.calls, 1)
	assert.True(t, p.ctxOK, "progress write must not inherit the session's cancellation")
	require.Len(t, a.events, 1)
	assert.Equal(t, "final", a.events[0].Stage)
	assert.Equal(t, "g1", a.events[0].GoalID)
	assert.True(t, a.events[0].Passed)
}
