// Package drill is the practice screen: an open-ended run of generated
// multiple choice questions over one goal.
package drill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/practice"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Deps are the collaborators of a practice screen.
type Deps struct {
	Gateway *gateway.Resilient
	Slot    *guard.Slot
	Log     *logger.Logger
}

type questionMsg struct {
	token guard.Token
	item  practice.Item
	err   error
}

// Screen implements screen.Screen for a practice drill.
type Screen struct {
	deps Deps
	goal content.Goal
	text string

	token guard.Token
	ctx   context.Context
	drill *practice.Drill

	spinner  spinner.Model
	loading  bool
	err      error
	item     practice.Item
	choice   components.Choice
	answered bool
	correct  bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

// New creates a drill over text, the goal's aggregated content.
func New(deps Deps, goal content.Goal, text string) *Screen {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Slot == nil {
		deps.Slot = &guard.Slot{}
	}
	return &Screen{
		deps: deps,
		goal: goal,
		text: text,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(theme.Selected),
		),
	}
}

func (s *Screen) Init() tea.Cmd {
	s.token, s.ctx = s.deps.Slot.Acquire(context.Background())
	s.drill = practice.New(s.ctx, practice.Config{
		Gateway: s.deps.Gateway,
		Log:     s.deps.Log.With("goal", s.goal.ID),
	}, s.goal, s.text, s.deps.Slot, s.token)
	s.deps.Log.Info("practice started", "goal", s.goal.ID, "segments", s.drill.Segments())
	return tea.Batch(s.spinner.Tick, s.next())
}

// Close releases the slot and drops any prefetched question.
func (s *Screen) Close() {
	s.deps.Slot.Release(s.token)
	if s.drill != nil {
		s.drill.Close()
	}
}

func (s *Screen) Title() string {
	return "Practice · " + s.goal.Title
}

func (s *Screen) Status() string {
	if s.drill == nil {
		return ""
	}
	st := s.drill.Stats()
	return fmt.Sprintf("%d/%d correct", st.Correct, st.Answered)
}

func (s *Screen) next() tea.Cmd {
	s.loading = true
	s.err = nil
	ctx, token, d := s.ctx, s.token, s.drill
	return func() tea.Msg {
		item, err := d.Next(ctx)
		return questionMsg{token: token, item: item, err: err}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionMsg:
		if !s.deps.Slot.Owns(msg.token) || errors.Is(msg.err, practice.ErrStale) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		s.item = msg.item
		opts := make([]string, len(msg.item.Question.Options))
		for i, o := range msg.item.Question.Options {
			opts[i] = o.Text
		}
		s.choice = components.NewChoice(msg.item.Question.Stem, opts)
		s.answered = false
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch {
	case s.err != nil:
		if key == "r" {
			return s.next()
		}
	case s.answered:
		if key == "enter" || key == "n" {
			return s.next()
		}
	default:
		if key == "enter" || key == "ctrl+s" {
			if s.choice.Selected < 0 {
				return nil
			}
			correct, err := s.drill.Answer(s.choice.Selected)
			if err != nil {
				return nil
			}
			s.correct = correct
			s.answered = true
			s.choice.Locked = true
			s.choice.Reveal = s.item.Question.CorrectOption()
			return nil
		}
		s.choice, _ = s.choice.Update(msg)
	}
	return nil
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width, 80)
	var b strings.Builder

	switch {
	case s.drill == nil || s.loading:
		b.WriteString("\n\n" + s.spinner.View() + " " + theme.Hint.Render("Generating a question..."))
	case s.err != nil:
		b.WriteString(components.Section("No question this time",
			"The question could not be generated. Press r to try again.", cw))
	default:
		label := fmt.Sprintf("Segment %d of %d", s.item.Segment+1, s.drill.Segments())
		b.WriteString(theme.Hint.Render(label) + "\n\n")
		b.WriteString(s.choice.View(cw, !s.answered))
		b.WriteString("\n\n")
		if s.answered {
			if s.correct {
				b.WriteString(theme.Correct.Render("Correct"))
			} else {
				b.WriteString(theme.Incorrect.Render("Not quite"))
			}
			b.WriteString("\n\n" + components.ButtonBar(components.Button{Key: "enter", Label: "Next question"}))
		} else {
			b.WriteString(components.ButtonBar(components.Button{
				Key: "enter", Label: "Check", Disabled: s.choice.Selected < 0,
			}))
		}
	}

	var st practice.Stats
	if s.drill != nil {
		st = s.drill.Stats()
	}
	pct := 0
	if st.Answered > 0 {
		pct = st.Correct * 100 / st.Answered
	}
	b.WriteString("\n\n" + components.NewScoreBar("Accuracy", pct, cw).View())

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(b.String()))
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.loading:
		return []layout.KeyHint{{Key: "esc", Description: "Back"}}
	case s.err != nil:
		return []layout.KeyHint{{Key: "r", Description: "Retry"}, {Key: "esc", Description: "Back"}}
	case s.answered:
		return []layout.KeyHint{{Key: "enter", Description: "Next"}, {Key: "esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "1-9", Description: "Pick"},
		{Key: "enter", Description: "Check"},
		{Key: "esc", Description: "Back"},
	}
}
