// Package path is the learning path screen. It renders the engine's current
// state, turns key presses into engine events and runs the resulting
// effects as commands. Every completion is checked against the guard slot
// before it reaches the engine.
package path

import (
	"context"
	"fmt"
	"reflect"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Deps are the collaborators shared by every path screen.
type Deps struct {
	Gateway  *gateway.Resilient
	Entries  engine.EntrySource
	Progress engine.ProgressRecorder
	Attempts engine.AttemptLog
	Slot     *guard.Slot
	Options  engine.Options
	Log      *logger.Logger
}

// entryInput is the learner's working answer to one entry question.
type entryInput struct {
	choice components.Choice
	answer components.AnswerBox
	open   bool
}

// Screen implements screen.Screen for one learning path session.
type Screen struct {
	deps  Deps
	goal  content.Goal
	steps []content.Step

	token guard.Token
	ctx   context.Context
	sess  engine.Session
	exec  *engine.Executor

	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int

	entry      []entryInput
	entryFocus int
	exercise   components.Choice
	reflection components.AnswerBox
	final      []components.Choice
	finalFocus int
	// lastFinal keeps the submitted test so the result can reveal answers.
	lastFinal []components.Choice
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

// New creates a path screen for goal. The session starts when the screen
// is pushed.
func New(deps Deps, goal content.Goal, steps []content.Step) *Screen {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Slot == nil {
		deps.Slot = &guard.Slot{}
	}
	return &Screen{
		deps:  deps,
		goal:  goal,
		steps: steps,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(theme.Selected),
		),
		viewport: viewport.New(viewport.WithWidth(60), viewport.WithHeight(10)),
	}
}

// Init acquires the guard slot and starts the session.
func (s *Screen) Init() tea.Cmd {
	s.token, s.ctx = s.deps.Slot.Acquire(context.Background())
	s.exec = engine.NewExecutor(engine.ExecutorConfig{
		Gateway:  s.deps.Gateway,
		Entries:  s.deps.Entries,
		Progress: s.deps.Progress,
		Attempts: s.deps.Attempts,
		Log:      s.deps.Log.With("goal", s.goal.ID),
	}, s.goal, s.steps)

	sess, effects := engine.Start(s.goal, s.steps, s.token, s.deps.Options)
	s.sess = sess
	s.deps.Log.Info("learning path started", "goal", s.goal.ID, "steps", len(s.steps))
	return tea.Batch(s.spinner.Tick, s.run(effects))
}

// Close releases the guard slot. Outstanding gateway calls are canceled and
// their completions dropped.
func (s *Screen) Close() {
	s.deps.Slot.Release(s.token)
}

func (s *Screen) Title() string {
	return s.goal.Title
}

func (s *Screen) Status() string {
	switch st := s.sess.State.(type) {
	case nil:
		return ""
	case engine.FinalLoading, engine.FinalQuestionSet, engine.FinalFailed:
		return fmt.Sprintf("Final test · attempt %d", s.sess.Attempt)
	default:
		if i, ok := engine.StepIndex(st); ok {
			return fmt.Sprintf("Step %d/%d", i+1, len(s.steps))
		}
		return st.Stage().String()
	}
}

// Session exposes the engine state, for tests and the app header.
func (s *Screen) Session() engine.Session { return s.sess }

// run turns effects into commands. Each command performs one effect under
// the session context and reports its completion.
func (s *Screen) run(effects []engine.Effect) tea.Cmd {
	if len(effects) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		ctx, token, exec := s.ctx, s.token, s.exec
		cmds = append(cmds, func() tea.Msg {
			ev := exec.Run(ctx, token, eff)
			if ev == nil {
				return nil
			}
			return effectDoneMsg{Token: token, Event: ev}
		})
	}
	return tea.Batch(cmds...)
}

// apply feeds ev to the engine and starts the resulting effects.
func (s *Screen) apply(ev engine.Event) tea.Cmd {
	prev := s.sess.State
	next, effects := engine.Transition(s.sess, ev)
	s.sess = next
	s.sync(prev, next.State)
	return s.run(effects)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case effectDoneMsg:
		if !s.deps.Slot.Owns(msg.Token) {
			s.deps.Log.Debug("dropped stale completion", "event", fmt.Sprintf("%T", msg.Event))
			return s, nil
		}
		return s, s.apply(msg.Event)

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return s, nil

	case tea.KeyMsg:
		if s.sess.State == nil || s.sess.State.Busy() {
			return s, nil
		}
		return s, s.handleKey(msg)
	}

	return s, s.forward(msg)
}

func (s *Screen) resize(width, height int) {
	s.width, s.height = width, height
	cw := components.ContentWidth(width, 90)
	s.reflection.SetWidth(cw)
	for i := range s.entry {
		s.entry[i].answer.SetWidth(cw)
	}
}

// forward passes non-key messages (cursor blink) to the focused editor.
func (s *Screen) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.sess.State.(type) {
	case engine.ReflectionQuestion:
		s.reflection, cmd = s.reflection.Update(msg)
	case engine.EntryQuestionSet:
		if s.entryFocus < len(s.entry) && s.entry[s.entryFocus].open {
			s.entry[s.entryFocus].answer, cmd = s.entry[s.entryFocus].answer.Update(msg)
		}
	}
	return cmd
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch st := s.sess.State.(type) {
	case engine.EntryQuestionSet:
		return s.entryKey(msg, key)

	case engine.EntryUnavailable:
		if key == "enter" || key == "s" {
			return s.apply(engine.SkipEntry{})
		}

	case engine.StepContent:
		switch key {
		case "enter", "ctrl+s":
			return s.apply(engine.MarkDone{Selection: s.exercise.Selected})
		case "pgdown":
			s.viewport.PageDown()
		case "pgup":
			s.viewport.PageUp()
		default:
			if s.steps[st.Index].Exercise != nil {
				s.exercise, _ = s.exercise.Update(msg)
			}
		}

	case engine.ReflectionQuestion:
		if key == "ctrl+s" {
			return s.apply(engine.SubmitReflection{Answer: s.reflection.Value()})
		}
		var cmd tea.Cmd
		s.reflection, cmd = s.reflection.Update(msg)
		return cmd

	case engine.StepFeedback:
		if key == "enter" || key == "c" {
			return s.apply(engine.Continue{})
		}

	case engine.FinalQuestionSet:
		return s.finalKey(msg, key)

	case engine.FinalFailed, engine.ResultFailed:
		if key == "r" {
			return s.apply(engine.RetryFinal{})
		}

	case engine.ResultPassed:
		if key == "enter" {
			return func() tea.Msg { return router.HomeMsg{} }
		}
	}
	return nil
}

func (s *Screen) entryKey(msg tea.KeyMsg, key string) tea.Cmd {
	switch key {
	case "ctrl+s":
		sel := make([]int, len(s.entry))
		ans := make([]string, len(s.entry))
		for i, in := range s.entry {
			sel[i] = -1
			if in.open {
				ans[i] = in.answer.Value()
			} else {
				sel[i] = in.choice.Selected
			}
		}
		return s.apply(engine.SubmitEntry{Selections: sel, Answers: ans})
	case "tab":
		return s.focusEntry(s.entryFocus + 1)
	case "shift+tab":
		return s.focusEntry(s.entryFocus - 1)
	}

	if s.entryFocus >= len(s.entry) {
		return nil
	}
	in := &s.entry[s.entryFocus]
	var cmd tea.Cmd
	if in.open {
		in.answer, cmd = in.answer.Update(msg)
	} else {
		in.choice, cmd = in.choice.Update(msg)
	}
	return cmd
}

func (s *Screen) focusEntry(i int) tea.Cmd {
	n := len(s.entry)
	if n == 0 {
		return nil
	}
	if s.entryFocus < n && s.entry[s.entryFocus].open {
		s.entry[s.entryFocus].answer.Blur()
	}
	s.entryFocus = (i%n + n) % n
	if s.entry[s.entryFocus].open {
		return s.entry[s.entryFocus].answer.Focus()
	}
	return nil
}

func (s *Screen) finalKey(msg tea.KeyMsg, key string) tea.Cmd {
	switch key {
	case "ctrl+s":
		st, _ := s.sess.State.(engine.FinalQuestionSet)
		sel := make([]int, len(s.final))
		s.lastFinal = make([]components.Choice, len(s.final))
		for i, c := range s.final {
			sel[i] = c.Selected
			c.Locked = true
			if i < len(st.Questions) {
				c.Reveal = st.Questions[i].CorrectOption()
			}
			s.lastFinal[i] = c
		}
		return s.apply(engine.SubmitFinal{Selections: sel})
	case "tab":
		if n := len(s.final); n > 0 {
			s.finalFocus = (s.finalFocus + 1) % n
		}
		return nil
	case "shift+tab":
		if n := len(s.final); n > 0 {
			s.finalFocus = (s.finalFocus - 1 + n) % n
		}
		return nil
	}
	if s.finalFocus < len(s.final) {
		s.final[s.finalFocus], _ = s.final[s.finalFocus].Update(msg)
	}
	return nil
}

// sync rebuilds the view-local inputs when the engine enters a new state.
// Re-entering the same variant (a rejected submit) keeps what was typed.
func (s *Screen) sync(prev, next engine.State) {
	if sameState(prev, next) {
		return
	}
	cw := components.ContentWidth(s.width, 90)

	switch st := next.(type) {
	case engine.EntryQuestionSet:
		s.entry = make([]entryInput, len(st.Questions))
		for i, q := range st.Questions {
			if q.IsOpen() {
				box := components.NewAnswerBox("Your answer", engine.MinEntryAnswer, engine.AnswerLength)
				box.SetWidth(cw)
				box.Blur()
				s.entry[i] = entryInput{answer: box, open: true}
				continue
			}
			opts := make([]string, len(q.Options))
			for j, o := range q.Options {
				opts[j] = o.Text
			}
			s.entry[i] = entryInput{choice: components.NewChoice(q.Stem, opts)}
		}
		s.entryFocus = 0
		s.focusEntry(0)

	case engine.StepContent:
		step := s.steps[st.Index]
		if ex := step.Exercise; ex != nil {
			s.exercise = components.NewChoice(ex.Prompt, ex.Options)
		}
		s.viewport.SetContent(renderStep(step, cw))
		s.viewport.GotoTop()

	case engine.ReflectionQuestion:
		s.reflection = components.NewAnswerBox("Your reflection", engine.MinReflectionAnswer, engine.AnswerLength)
		s.reflection.SetWidth(cw)

	case engine.FinalQuestionSet:
		s.final = make([]components.Choice, len(st.Questions))
		for i, q := range st.Questions {
			opts := make([]string, len(q.Options))
			for j, o := range q.Options {
				opts[j] = o.Text
			}
			s.final[i] = components.NewChoice(q.Stem, opts)
		}
		s.finalFocus = 0
		s.lastFinal = nil
	}
}

// sameState reports whether next is the same variant at the same position
// as prev.
func sameState(prev, next engine.State) bool {
	if prev == nil || reflect.TypeOf(prev) != reflect.TypeOf(next) {
		return false
	}
	pi, _ := engine.StepIndex(prev)
	ni, _ := engine.StepIndex(next)
	if pi != ni {
		return false
	}
	if p, ok := prev.(engine.StepContent); ok {
		return p.Review == next.(engine.StepContent).Review
	}
	return true
}

func (s *Screen) KeyHints() []layout.KeyHint {
	back := layout.KeyHint{Key: "Esc", Description: "Leave"}
	switch s.sess.State.(type) {
	case engine.EntryQuestionSet:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next question"},
			{Key: "1-9", Description: "Pick"},
			{Key: "Ctrl+S", Description: "Submit"},
			back,
		}
	case engine.EntryUnavailable:
		return []layout.KeyHint{{Key: "Enter", Description: "Skip to first step"}, back}
	case engine.StepContent:
		return []layout.KeyHint{
			{Key: "PgUp/PgDn", Description: "Scroll"},
			{Key: "Enter", Description: "Mark done"},
			back,
		}
	case engine.ReflectionQuestion:
		return []layout.KeyHint{{Key: "Ctrl+S", Description: "Submit"}, back}
	case engine.StepFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}, back}
	case engine.FinalQuestionSet:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next question"},
			{Key: "1-9", Description: "Pick"},
			{Key: "Ctrl+S", Description: "Submit"},
			back,
		}
	case engine.FinalFailed, engine.ResultFailed:
		return []layout.KeyHint{{Key: "R", Description: "Retry"}, back}
	case engine.ResultPassed:
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	}
	return []layout.KeyHint{back}
}
