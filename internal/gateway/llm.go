package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/pathwise/internal/llm"
)

// LLMConfig bounds the generation calls.
type LLMConfig struct {
	MaxTokens      int
	FinalMaxTokens int
	Temperature    float64
}

func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		MaxTokens:      512,
		FinalMaxTokens: 2048,
		Temperature:    0.4,
	}
}

// LLM implements Gateway directly on a model provider.
type LLM struct {
	provider llm.Provider
	cfg      LLMConfig
}

func NewLLM(provider llm.Provider, cfg LLMConfig) *LLM {
	return &LLM{provider: provider, cfg: cfg}
}

// generate runs one schema-bound call and decodes the content into out.
func (g *LLM) generate(ctx context.Context, purpose, system, user string, schema *llm.Schema, maxTokens int, out any) error {
	ctx = llm.WithPurpose(ctx, purpose)
	resp, err := g.provider.Generate(ctx, llm.UserRequest(system, user, schema, maxTokens, g.cfg.Temperature))
	if err != nil {
		return fmt.Errorf("%s: %w", purpose, err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", purpose, err)
	}
	return nil
}

func (g *LLM) ReflectionQuestion(ctx context.Context, req ReflectionQuestionRequest) (string, error) {
	user, err := render(reflectionQuestionTmpl, req)
	if err != nil {
		return "", err
	}
	var out struct {
		Question string `json:"question"`
	}
	if err := g.generate(ctx, llm.PurposeReflectionQuestion, reflectionQuestionSystem, user,
		ReflectionQuestionSchema, g.cfg.MaxTokens, &out); err != nil {
		return "", err
	}
	q := strings.TrimSpace(out.Question)
	if q == "" {
		return "", &ErrInvalidOutput{Shape: llm.PurposeReflectionQuestion, Reason: "empty question"}
	}
	return q, nil
}

func (g *LLM) AnalyzeReflection(ctx context.Context, req AnalyzeReflectionRequest) (ReflectionFeedback, error) {
	user, err := render(reflectionAnalysisTmpl, req)
	if err != nil {
		return ReflectionFeedback{}, err
	}
	var out struct {
		Feedback       string    `json:"feedback"`
		Directive      Directive `json:"directive"`
		Recommendation string    `json:"recommendation"`
	}
	if err := g.generate(ctx, llm.PurposeReflectionAnalysis, reflectionAnalysisSystem, user,
		ReflectionAnalysisSchema, g.cfg.MaxTokens, &out); err != nil {
		return ReflectionFeedback{}, err
	}
	if out.Directive != DirectiveContinue && out.Directive != DirectiveRepeat {
		return ReflectionFeedback{}, &ErrInvalidOutput{Shape: llm.PurposeReflectionAnalysis, Reason: fmt.Sprintf("unknown directive %q", out.Directive)}
	}
	return ReflectionFeedback{
		Narrative:      strings.TrimSpace(out.Feedback),
		Directive:      out.Directive,
		Recommendation: strings.TrimSpace(out.Recommendation),
	}, nil
}

// generatedQuestion is the model's shape for one closed question.
type generatedQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

func (q generatedQuestion) closed() ClosedQuestion {
	opts := make([]Option, len(q.Options))
	for i, text := range q.Options {
		opts[i] = Option{Text: strings.TrimSpace(text), Correct: i == q.CorrectIndex}
	}
	return ClosedQuestion{Stem: strings.TrimSpace(q.Question), Options: opts}
}

func (g *LLM) FinalTest(ctx context.Context, req FinalTestRequest) ([]ClosedQuestion, error) {
	user, err := render(finalTestTmpl, req)
	if err != nil {
		return nil, err
	}
	var out struct {
		Questions []generatedQuestion `json:"questions"`
	}
	if err := g.generate(ctx, llm.PurposeFinalTest, finalTestSystem, user,
		FinalTestSchema, g.cfg.FinalMaxTokens, &out); err != nil {
		return nil, err
	}
	qs := make([]ClosedQuestion, len(out.Questions))
	for i, q := range out.Questions {
		qs[i] = q.closed()
	}
	if err := ValidateQuestions(llm.PurposeFinalTest, qs, req.Count); err != nil {
		return nil, err
	}
	return qs, nil
}

func (g *LLM) GradeEntryAnswer(ctx context.Context, req GradeEntryRequest) (Grade, error) {
	user, err := render(entryGradeTmpl, req)
	if err != nil {
		return Grade{}, err
	}
	var out Grade
	if err := g.generate(ctx, llm.PurposeEntryGrade, entryGradeSystem, user,
		EntryGradeSchema, g.cfg.MaxTokens, &out); err != nil {
		return Grade{}, err
	}
	out.Feedback = strings.TrimSpace(out.Feedback)
	return out, nil
}

func (g *LLM) AnalyzeEntry(ctx context.Context, req AnalyzeEntryRequest) (EntryAnalysis, error) {
	var out EntryAnalysis
	if err := g.generate(ctx, llm.PurposeEntryAnalysis, entryAnalysisSystem, entryAnalysisMessage(req),
		EntryAnalysisSchema, g.cfg.MaxTokens, &out); err != nil {
		return EntryAnalysis{}, err
	}
	return out.withLists(), nil
}

func (g *LLM) PracticeQuestion(ctx context.Context, req PracticeQuestionRequest) (ClosedQuestion, error) {
	user, err := render(practiceQuestionTmpl, req)
	if err != nil {
		return ClosedQuestion{}, err
	}
	var out generatedQuestion
	if err := g.generate(ctx, llm.PurposePracticeQuestion, practiceQuestionSystem, user,
		PracticeQuestionSchema, g.cfg.MaxTokens, &out); err != nil {
		return ClosedQuestion{}, err
	}
	q := out.closed()
	if err := ValidateQuestions(llm.PurposePracticeQuestion, []ClosedQuestion{q}, 1); err != nil {
		return ClosedQuestion{}, err
	}
	return q, nil
}
