// Package history shows recent entry and final attempts grouped by goal.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/layout"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

const pageSize = 50

type attemptsMsg struct {
	attempts []store.AttemptEvent
	err      error
}

// row is either a goal heading (attempt == nil) or one attempt under it.
type row struct {
	goalID  string
	attempt *store.AttemptEvent
}

// Screen lists scored attempts, newest first, under their goal.
type Screen struct {
	events     store.EventRepo
	rows       []row
	cursor     int
	open       int // index of the attempt row showing details, or -1
	finalsOnly bool
	all        []store.AttemptEvent
	state      string // "loading", "ready" or an error message
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

func New(events store.EventRepo) *Screen {
	return &Screen{events: events, open: -1, state: "loading"}
}

func (s *Screen) Init() tea.Cmd {
	events := s.events
	return func() tea.Msg {
		a, err := events.QueryAttempts(context.Background(), store.QueryOpts{Limit: pageSize})
		return attemptsMsg{attempts: a, err: err}
	}
}

func (s *Screen) Title() string { return "History" }

func (s *Screen) KeyHints() []layout.KeyHint {
	filter := "Finals only"
	if s.finalsOnly {
		filter = "All attempts"
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Details"},
		{Key: "f", Description: filter},
		{Key: "Esc", Description: "Back"},
	}
}

// regroup rebuilds rows from all, keeping goals in order of their most
// recent attempt.
func (s *Screen) regroup() {
	byGoal := map[string][]int{}
	var order []string
	for i, a := range s.all {
		if s.finalsOnly && a.Stage != "final" {
			continue
		}
		if _, seen := byGoal[a.GoalID]; !seen {
			order = append(order, a.GoalID)
		}
		byGoal[a.GoalID] = append(byGoal[a.GoalID], i)
	}

	s.rows = s.rows[:0]
	for _, g := range order {
		s.rows = append(s.rows, row{goalID: g})
		for _, i := range byGoal[g] {
			s.rows = append(s.rows, row{goalID: g, attempt: &s.all[i]})
		}
	}
	s.open = -1
	s.cursor = min(s.cursor, max(len(s.rows)-1, 0))
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case attemptsMsg:
		if msg.err != nil {
			s.state = msg.err.Error()
			return s, nil
		}
		s.all = msg.attempts
		s.state = "ready"
		s.regroup()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = min(s.cursor+1, max(len(s.rows)-1, 0))
		case "f":
			s.finalsOnly = !s.finalsOnly
			s.regroup()
		case "enter":
			if s.cursor < len(s.rows) && s.rows[s.cursor].attempt != nil {
				if s.open == s.cursor {
					s.open = -1
				} else {
					s.open = s.cursor
				}
			}
		}
	}
	return s, nil
}

func centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render("\n\n" + text)
}

func (s *Screen) View(width, height int) string {
	switch s.state {
	case "loading":
		return centered(width, theme.Subtitle, "Loading history...")
	case "ready":
	default:
		return centered(width, theme.ErrorText, "Error: "+s.state)
	}
	if len(s.rows) == 0 {
		return centered(width, theme.Hint, "No attempts yet. Pick a goal to start!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, r := range s.rows {
		var line string
		if r.attempt == nil {
			line = theme.Title.Render(r.goalID)
		} else {
			line = attemptLine(*r.attempt)
		}
		if i == s.cursor {
			line = theme.Selected.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString("  " + line + "\n")
		if i == s.open {
			b.WriteString(theme.Note.Render("    "+details(*r.attempt)) + "\n")
		}
	}
	return b.String()
}

func attemptLine(a store.AttemptEvent) string {
	score := fmt.Sprintf("%d/%d %3d%%", a.Correct, a.Total, a.Percentage)
	return fmt.Sprintf("  %s  %-5s  %s  %s",
		theme.Subtitle.Render(a.Timestamp.Local().Format("Jan 02 15:04")),
		a.Stage, score, outcome(a))
}

func outcome(a store.AttemptEvent) string {
	switch {
	case a.Stage != "final":
		return theme.Proficiency(a.Proficiency)
	case a.Passed:
		return theme.Correct.Render("passed")
	default:
		return theme.Incorrect.Render("failed")
	}
}

func details(a store.AttemptEvent) string {
	if a.Stage == "final" {
		return fmt.Sprintf("attempt %s · final test", a.AttemptID)
	}
	return fmt.Sprintf("attempt %s · proficiency %d/2", a.AttemptID, a.Proficiency)
}
