package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/segment"
	"github.com/abhisek/pathwise/internal/store"
)

// FinalExcerptLimit bounds the aggregated goal content sent for the final
// test.
const FinalExcerptLimit = 12000

// sideEffectTimeout bounds progress and history writes, which outlive the
// session that triggered them.
const sideEffectTimeout = 5 * time.Second

// EntrySource loads a goal's entry questions.
type EntrySource interface {
	EntryQuestions(ctx context.Context, goalID string) ([]content.EntryQuestion, error)
}

// ProgressRecorder is the fire-and-forget progress signal.
type ProgressRecorder interface {
	Record(ctx context.Context, goalID string, percentage int, status string)
}

// AttemptLog stores scored attempts.
type AttemptLog interface {
	AppendAttempt(ctx context.Context, data store.AttemptEventData) error
}

// ExecutorConfig holds the executor's collaborators. Progress, Attempts and
// Log may be nil.
type ExecutorConfig struct {
	Gateway  *gateway.Resilient
	Entries  EntrySource
	Progress ProgressRecorder
	Attempts AttemptLog
	Log      *logger.Logger
	// Rand drives segment rotation; nil uses the global source.
	Rand *rand.Rand
}

// Executor performs the effects of one session. Reflection excerpts of
// long steps rotate through the step's segments, so a repeated step gets a
// question about different material.
type Executor struct {
	cfg   ExecutorConfig
	goal  content.Goal
	steps []content.Step

	mu       sync.Mutex
	segments map[int]*stepSegments
}

type stepSegments struct {
	parts    []string
	rotation *segment.Rotation
	last     string
}

func NewExecutor(cfg ExecutorConfig, goal content.Goal, steps []content.Step) *Executor {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	return &Executor{
		cfg:      cfg,
		goal:     goal,
		steps:    steps,
		segments: make(map[int]*stepSegments),
	}
}

// Run performs eff under token and returns the completion event, or nil for
// fire-and-forget effects. Gateway failures never surface here except for
// the final test.
func (x *Executor) Run(ctx context.Context, token guard.Token, eff Effect) Event {
	done := Completion{Token: token}

	switch e := eff.(type) {
	case LoadEntry:
		qs, err := x.cfg.Entries.EntryQuestions(ctx, e.GoalID)
		if err != nil {
			x.cfg.Log.Warn("entry questions unavailable", "goal_id", e.GoalID, "error", err)
		}
		return EntryLoaded{Completion: done, Questions: qs, Err: err}

	case GradeEntryItem:
		g := x.cfg.Gateway.GradeEntryAnswer(ctx, gateway.GradeEntryRequest{
			Question:  e.Question.Stem,
			Reference: e.Question.Reference,
			Answer:    strings.TrimSpace(e.Answer),
			Case:      e.Question.Case,
		})
		return EntryItemGraded{Completion: done, Index: e.Index, Grade: g}

	case AnalyzeEntry:
		a := x.cfg.Gateway.AnalyzeEntry(ctx, gateway.AnalyzeEntryRequest{
			GoalText:   x.goal.Title,
			Excerpt:    segment.Excerpt(x.goalContent(), gateway.ExcerptLimit),
			Results:    e.Result.Results,
			Percentage: e.Result.Percentage,
			Buckets:    e.Result.Buckets,
		})
		return EntryAnalyzed{Completion: done, Analysis: a}

	case GenerateReflection:
		q := x.cfg.Gateway.ReflectionQuestion(ctx, gateway.ReflectionQuestionRequest{
			GoalText:  x.goal.Title,
			Excerpt:   x.nextExcerpt(e.Step),
			StepIndex: e.Step,
			StepCount: len(x.steps),
		})
		return ReflectionQuestionReady{Completion: done, Step: e.Step, Question: q}

	case AnalyzeReflection:
		fb := x.cfg.Gateway.AnalyzeReflection(ctx, gateway.AnalyzeReflectionRequest{
			GoalText: x.goal.Title,
			Excerpt:  x.lastExcerpt(e.Step),
			Question: e.Question,
			Answer:   strings.TrimSpace(e.Answer),
		})
		return ReflectionAnalyzed{Completion: done, Step: e.Step, Feedback: fb}

	case GenerateFinal:
		qs, err := x.cfg.Gateway.FinalTest(ctx, gateway.FinalTestRequest{
			GoalText: x.goal.Title,
			Excerpt:  segment.Excerpt(x.goalContent(), FinalExcerptLimit),
			Count:    e.Count,
		})
		return FinalReady{Completion: done, Attempt: e.Attempt, Questions: qs, Err: err}

	case RecordProgress:
		if x.cfg.Progress != nil {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
			defer cancel()
			x.cfg.Progress.Record(ctx, e.GoalID, e.Percentage, e.Status)
		}
		return nil

	case LogAttempt:
		x.logAttempt(ctx, token, e)
		return nil
	}

	x.cfg.Log.Error("unknown effect", "effect", fmt.Sprintf("%T", eff))
	return nil
}

func (x *Executor) logAttempt(ctx context.Context, token guard.Token, e LogAttempt) {
	x.cfg.Log.Info("attempt scored",
		"goal_id", x.goal.ID,
		"stage", e.Stage.String(),
		"attempt", e.Attempt,
		"percentage", e.Percentage,
		"passed", e.Passed,
	)
	if x.cfg.Attempts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	err := x.cfg.Attempts.AppendAttempt(ctx, store.AttemptEventData{
		AttemptID:   fmt.Sprintf("%s/%s/%d", token.Session, e.Stage, e.Attempt),
		GoalID:      x.goal.ID,
		Stage:       e.Stage.String(),
		Correct:     e.Correct,
		Total:       e.Total,
		Percentage:  e.Percentage,
		Passed:      e.Passed,
		Proficiency: e.Proficiency,
	})
	if err != nil {
		x.cfg.Log.Warn("failed to record attempt", "goal_id", x.goal.ID, "error", err)
	}
}

func (x *Executor) goalContent() string {
	parts := make([]string, 0, len(x.steps))
	for _, s := range x.steps {
		parts = append(parts, s.Text())
	}
	return strings.Join(parts, "\n\n")
}

// nextExcerpt returns the excerpt for a new reflection question on step i.
// Short steps are sent whole; long ones rotate through their segments.
func (x *Executor) nextExcerpt(i int) string {
	if i < 0 || i >= len(x.steps) {
		return ""
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	seg, ok := x.segments[i]
	if !ok {
		text := x.steps[i].Text()
		n := segment.Count(text, gateway.ExcerptLimit)
		parts := segment.Split(text, n)
		seg = &stepSegments{parts: parts, rotation: segment.NewRotation(len(parts), x.cfg.Rand)}
		x.segments[i] = seg
	}
	seg.last = segment.Excerpt(seg.parts[seg.rotation.Pick()], gateway.ExcerptLimit)
	return seg.last
}

// lastExcerpt returns the excerpt the step's current question was built
// from.
func (x *Executor) lastExcerpt(i int) string {
	x.mu.Lock()
	defer x.mu.Unlock()
	if seg, ok := x.segments[i]; ok {
		return seg.last
	}
	if i < 0 || i >= len(x.steps) {
		return ""
	}
	return segment.Excerpt(x.steps[i].Text(), gateway.ExcerptLimit)
}
