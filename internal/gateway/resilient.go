package gateway

import (
	"context"
	"time"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logger"
)

// DefaultTimeout bounds one gateway call.
const DefaultTimeout = 45 * time.Second

// Resilient wraps a Gateway with a per-call timeout and converts failures
// of the degradable shapes into their defaults. Degradable methods return
// only a value, so callers cannot forget the fallback. Failures are logged,
// never returned.
type Resilient struct {
	gw      Gateway
	timeout time.Duration
	log     *logger.Logger
}

func NewResilient(gw Gateway, timeout time.Duration, log *logger.Logger) *Resilient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Resilient{gw: gw, timeout: timeout, log: log}
}

func (r *Resilient) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Resilient) degraded(shape string, err error) {
	r.log.Warn("gateway call degraded to fallback", "shape", shape, "class", llm.Classify(err), "error", err)
}

// ReflectionQuestion returns a generated question or the generic prompt.
func (r *Resilient) ReflectionQuestion(ctx context.Context, req ReflectionQuestionRequest) string {
	ctx, cancel := r.call(ctx)
	defer cancel()
	q, err := r.gw.ReflectionQuestion(ctx, req)
	if err != nil {
		r.degraded(llm.PurposeReflectionQuestion, err)
		return DefaultReflectionQuestion()
	}
	return q
}

// AnalyzeReflection returns feedback or the generic acknowledgement.
func (r *Resilient) AnalyzeReflection(ctx context.Context, req AnalyzeReflectionRequest) ReflectionFeedback {
	ctx, cancel := r.call(ctx)
	defer cancel()
	fb, err := r.gw.AnalyzeReflection(ctx, req)
	if err != nil {
		r.degraded(llm.PurposeReflectionAnalysis, err)
		return DefaultReflectionFeedback()
	}
	return fb
}

// GradeEntryAnswer returns the verdict or an incorrect default grade.
func (r *Resilient) GradeEntryAnswer(ctx context.Context, req GradeEntryRequest) Grade {
	ctx, cancel := r.call(ctx)
	defer cancel()
	g, err := r.gw.GradeEntryAnswer(ctx, req)
	if err != nil {
		r.degraded(llm.PurposeEntryGrade, err)
		return DefaultGrade()
	}
	return g
}

// AnalyzeEntry returns the narrative or an empty analysis.
func (r *Resilient) AnalyzeEntry(ctx context.Context, req AnalyzeEntryRequest) EntryAnalysis {
	ctx, cancel := r.call(ctx)
	defer cancel()
	a, err := r.gw.AnalyzeEntry(ctx, req)
	if err != nil {
		r.degraded(llm.PurposeEntryAnalysis, err)
		return EmptyEntryAnalysis()
	}
	return a
}

// FinalTest has no fallback; the error is returned to the caller.
func (r *Resilient) FinalTest(ctx context.Context, req FinalTestRequest) ([]ClosedQuestion, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	qs, err := r.gw.FinalTest(ctx, req)
	if err != nil {
		r.log.Error("final test generation failed", "class", llm.Classify(err), "error", err)
		return nil, err
	}
	return qs, nil
}

// PracticeQuestion has no fallback either; the drill offers a retry.
func (r *Resilient) PracticeQuestion(ctx context.Context, req PracticeQuestionRequest) (ClosedQuestion, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	q, err := r.gw.PracticeQuestion(ctx, req)
	if err != nil {
		r.log.Warn("practice question failed", "class", llm.Classify(err), "error", err)
		return ClosedQuestion{}, err
	}
	return q, nil
}
