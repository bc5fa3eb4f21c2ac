package path

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
)

// stubGateway answers every shape instantly.
type stubGateway struct {
	finalErr error
}

func (g *stubGateway) ReflectionQuestion(context.Context, gateway.ReflectionQuestionRequest) (string, error) {
	return "Why does staging matter?", nil
}

func (g *stubGateway) AnalyzeReflection(context.Context, gateway.AnalyzeReflectionRequest) (gateway.ReflectionFeedback, error) {
	return gateway.ReflectionFeedback{Narrative: "Well put.", Directive: gateway.DirectiveContinue}, nil
}

func (g *stubGateway) FinalTest(_ context.Context, req gateway.FinalTestRequest) ([]gateway.ClosedQuestion, error) {
	if g.finalErr != nil {
		return nil, g.finalErr
	}
	qs := make([]gateway.ClosedQuestion, req.Count)
	for i := range qs {
		qs[i] = gateway.ClosedQuestion{
			Stem:    "Pick the first option",
			Options: []gateway.Option{{Text: "right", Correct: true}, {Text: "wrong"}},
		}
	}
	return qs, nil
}

func (g *stubGateway) GradeEntryAnswer(context.Context, gateway.GradeEntryRequest) (gateway.Grade, error) {
	return gateway.Grade{Correct: true}, nil
}

func (g *stubGateway) AnalyzeEntry(context.Context, gateway.AnalyzeEntryRequest) (gateway.EntryAnalysis, error) {
	return gateway.EntryAnalysis{Summary: "ok"}, nil
}

func (g *stubGateway) PracticeQuestion(context.Context, gateway.PracticeQuestionRequest) (gateway.ClosedQuestion, error) {
	return gateway.ClosedQuestion{}, errors.New("not used")
}

type stubEntries struct {
	questions []content.EntryQuestion
}

func (e stubEntries) EntryQuestions(context.Context, string) ([]content.EntryQuestion, error) {
	return e.questions, nil
}

type recordedProgress struct {
	mu    sync.Mutex
	calls []string
}

func (p *recordedProgress) Record(_ context.Context, goalID string, pct int, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, goalID+":"+status)
}

var testGoal = content.Goal{ID: "git-basics", Title: "Git basics"}

var testSteps = []content.Step{{
	Title:  "Staging",
	Blocks: []content.Block{{Kind: content.BlockText, Body: "git add stages changes."}},
	Exercise: &content.Exercise{
		Prompt:  "Which command stages?",
		Options: []string{"git add", "git push"},
		Answer:  0,
	},
}}

func closedEntry() content.EntryQuestion {
	return content.EntryQuestion{
		Kind:    content.KindClosed,
		Stem:    "What does git add do?",
		Level:   1,
		Options: []content.Option{{Text: "stages", Correct: true}, {Text: "pushes"}},
	}
}

func newScreen(t *testing.T, gw gateway.Gateway, slot *guard.Slot, progress *recordedProgress) *Screen {
	t.Helper()
	deps := Deps{
		Gateway: gateway.NewResilient(gw, time.Second, nil),
		Entries: stubEntries{questions: []content.EntryQuestion{closedEntry()}},
		Slot:    slot,
		Options: engine.Options{FinalQuestions: 2},
	}
	if progress != nil {
		deps.Progress = progress
	}
	return New(deps, testGoal, testSteps)
}

// drain runs cmd and every command it produces, feeding completions back
// into s. Spinner ticks are skipped so the loop terminates. Other messages
// are returned.
func drain(t *testing.T, s screen.Screen, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case effectDoneMsg:
			_, next := s.Update(msg)
			queue = append(queue, next)
		default:
			out = append(out, msg)
		}
	}
	return out
}

func press(t *testing.T, s *Screen, k tea.KeyPressMsg) []tea.Msg {
	t.Helper()
	_, cmd := s.Update(k)
	return drain(t, s, cmd)
}

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	tab   = tea.KeyPressMsg{Code: tea.KeyTab}
	ctrlS = tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
)

func TestPath_FullWalkthrough(t *testing.T) {
	progress := &recordedProgress{}
	s := newScreen(t, &stubGateway{}, &guard.Slot{}, progress)
	drain(t, s, s.Init())

	if _, ok := s.Session().State.(engine.EntryQuestionSet); !ok {
		t.Fatalf("state = %T, want EntryQuestionSet", s.Session().State)
	}

	press(t, s, key('1'))
	press(t, s, ctrlS)
	if st, ok := s.Session().State.(engine.StepContent); !ok || st.Index != 0 {
		t.Fatalf("state = %#v, want StepContent{0}", s.Session().State)
	}
	if s.Session().Entry == nil || s.Session().Entry.Percentage != 100 {
		t.Fatalf("entry result = %+v", s.Session().Entry)
	}

	press(t, s, key('1'))
	press(t, s, enter)
	if _, ok := s.Session().State.(engine.ReflectionQuestion); !ok {
		t.Fatalf("state = %T, want ReflectionQuestion", s.Session().State)
	}
	if ex := s.Session().Reflection.Exercise; ex == nil || !ex.Correct {
		t.Errorf("exercise outcome = %+v, want correct", ex)
	}

	s.reflection.Model.SetValue("It lets me choose what goes into a commit.")
	press(t, s, ctrlS)
	if _, ok := s.Session().State.(engine.StepFeedback); !ok {
		t.Fatalf("state = %T, want StepFeedback", s.Session().State)
	}

	press(t, s, enter)
	if _, ok := s.Session().State.(engine.FinalQuestionSet); !ok {
		t.Fatalf("state = %T, want FinalQuestionSet", s.Session().State)
	}

	press(t, s, key('1'))
	press(t, s, tab)
	press(t, s, key('1'))
	press(t, s, ctrlS)
	if _, ok := s.Session().State.(engine.ResultPassed); !ok {
		t.Fatalf("state = %T, want ResultPassed", s.Session().State)
	}
	if len(progress.calls) != 1 || progress.calls[0] != "git-basics:completed" {
		t.Errorf("progress calls = %v", progress.calls)
	}

	msgs := press(t, s, enter)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v, want one navigation message", msgs)
	}
	if _, ok := msgs[0].(router.HomeMsg); !ok {
		t.Errorf("message = %T, want HomeMsg", msgs[0])
	}
}

func TestPath_ShortReflectionKeepsText(t *testing.T) {
	s := newScreen(t, &stubGateway{}, &guard.Slot{}, nil)
	drain(t, s, s.Init())
	press(t, s, ctrlS)
	press(t, s, enter)

	s.reflection.Model.SetValue("short")
	press(t, s, ctrlS)

	st, ok := s.Session().State.(engine.ReflectionQuestion)
	if !ok || st.Warning == "" {
		t.Fatalf("state = %#v, want ReflectionQuestion with a warning", s.Session().State)
	}
	if got := s.reflection.Value(); got != "short" {
		t.Errorf("answer = %q, want the typed text kept", got)
	}
	if !strings.Contains(s.View(100, 40), st.Warning) {
		t.Error("warning not rendered")
	}
}

func TestPath_ClosedScreenDropsCompletions(t *testing.T) {
	slot := &guard.Slot{}
	s := newScreen(t, &stubGateway{}, slot, nil)
	cmd := s.Init()
	s.Close()

	drain(t, s, cmd)
	if _, ok := s.Session().State.(engine.EntryLoading); !ok {
		t.Errorf("state = %T, want EntryLoading after close", s.Session().State)
	}
}

func TestPath_NewSessionInvalidatesOld(t *testing.T) {
	slot := &guard.Slot{}
	first := newScreen(t, &stubGateway{}, slot, nil)
	firstCmd := first.Init()

	second := newScreen(t, &stubGateway{}, slot, nil)
	drain(t, second, second.Init())
	drain(t, first, firstCmd)

	if _, ok := first.Session().State.(engine.EntryLoading); !ok {
		t.Errorf("old session state = %T, want EntryLoading", first.Session().State)
	}
	if _, ok := second.Session().State.(engine.EntryQuestionSet); !ok {
		t.Errorf("new session state = %T, want EntryQuestionSet", second.Session().State)
	}
}

func TestPath_BusyIgnoresKeys(t *testing.T) {
	s := newScreen(t, &stubGateway{}, &guard.Slot{}, nil)
	s.Init()

	_, cmd := s.Update(ctrlS)
	if cmd != nil {
		t.Error("expected no command while loading")
	}
	if _, ok := s.Session().State.(engine.EntryLoading); !ok {
		t.Errorf("state = %T, want EntryLoading", s.Session().State)
	}
}

func TestPath_FinalFailureAndRetry(t *testing.T) {
	gw := &stubGateway{finalErr: errors.New("model down")}
	s := newScreen(t, gw, &guard.Slot{}, nil)
	drain(t, s, s.Init())
	press(t, s, ctrlS)
	press(t, s, enter)
	s.reflection.Model.SetValue("A reflection that is long enough.")
	press(t, s, ctrlS)
	press(t, s, enter)

	st, ok := s.Session().State.(engine.FinalFailed)
	if !ok {
		t.Fatalf("state = %T, want FinalFailed", s.Session().State)
	}
	if !strings.Contains(s.View(100, 40), "could not be generated") {
		t.Error("failure not rendered")
	}

	// Enter does not skip past the failure.
	press(t, s, enter)
	if _, ok := s.Session().State.(engine.FinalFailed); !ok {
		t.Fatalf("state = %T, want FinalFailed", s.Session().State)
	}

	gw.finalErr = nil
	press(t, s, key('r'))
	next, ok := s.Session().State.(engine.FinalQuestionSet)
	if !ok {
		t.Fatalf("state = %T, want FinalQuestionSet", s.Session().State)
	}
	if next.Attempt != st.Attempt+1 {
		t.Errorf("attempt = %d, want %d", next.Attempt, st.Attempt+1)
	}
}

func TestPath_FailedResultRevealsAnswers(t *testing.T) {
	s := newScreen(t, &stubGateway{}, &guard.Slot{}, nil)
	drain(t, s, s.Init())
	press(t, s, ctrlS)
	press(t, s, enter)
	s.reflection.Model.SetValue("A reflection that is long enough.")
	press(t, s, ctrlS)
	press(t, s, enter)

	press(t, s, key('2'))
	press(t, s, ctrlS)
	if _, ok := s.Session().State.(engine.ResultFailed); !ok {
		t.Fatalf("state = %T, want ResultFailed", s.Session().State)
	}
	if len(s.lastFinal) != 2 || s.lastFinal[0].Reveal != 0 {
		t.Errorf("revealed = %+v", s.lastFinal)
	}
	if !strings.Contains(s.View(100, 40), "Not there yet") {
		t.Error("result not rendered")
	}
}

func TestPath_StatusAndHints(t *testing.T) {
	s := newScreen(t, &stubGateway{}, &guard.Slot{}, nil)
	drain(t, s, s.Init())
	press(t, s, ctrlS)

	if got := s.Status(); got != "Step 1/1" {
		t.Errorf("Status() = %q", got)
	}
	if len(s.KeyHints()) == 0 {
		t.Error("expected key hints")
	}
	if s.Title() != "Git basics" {
		t.Errorf("Title() = %q", s.Title())
	}
}
