package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Choice is a single-answer option list. Selected is -1 until the learner
// picks an option. Reveal, when >= 0, marks the correct option after
// submission.
type Choice struct {
	Stem     string
	Options  []string
	Cursor   int
	Selected int
	Reveal   int
	Locked   bool
}

// NewChoice creates an unanswered option list.
func NewChoice(stem string, options []string) Choice {
	return Choice{
		Stem:     stem,
		Options:  options,
		Selected: -1,
		Reveal:   -1,
	}
}

// Update moves the cursor and records picks. Number keys pick directly.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if c.Locked {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ", "x":
		c.Selected = c.Cursor
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Cursor = i
				c.Selected = i
			}
		}
	}
	return c, nil
}

// Answered reports whether an option was picked.
func (c Choice) Answered() bool { return c.Selected >= 0 }

// View renders the stem and options. focused controls whether the cursor
// is drawn.
func (c Choice) View(width int, focused bool) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.Text).Bold(true).Render(c.Stem))
	b.WriteString("\n")

	for i, opt := range c.Options {
		mark := "( )"
		if i == c.Selected {
			mark = "(•)"
		}
		prefix := "  "
		if focused && i == c.Cursor && !c.Locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s %d) %s", prefix, mark, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case c.Reveal >= 0 && i == c.Reveal:
			style = theme.Correct
		case c.Reveal >= 0 && i == c.Selected:
			style = theme.Incorrect
		case c.Reveal >= 0:
			style = style.Foreground(theme.TextDim)
		case focused && i == c.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
