package components

import (
	"fmt"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// AnswerBox wraps bubbles/textarea for free-text answers and shows a
// running length against a minimum.
type AnswerBox struct {
	Model textarea.Model
	Min   int
	// Count measures the answer the same way the validator does.
	Count func(string) int
}

// NewAnswerBox creates a focused answer box.
func NewAnswerBox(placeholder string, min int, count func(string) int) AnswerBox {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(4)
	ta.Focus()
	return AnswerBox{Model: ta, Min: min, Count: count}
}

// Init starts the cursor.
func (a AnswerBox) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update forwards editing keys.
func (a AnswerBox) Update(msg tea.Msg) (AnswerBox, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// SetWidth resizes the editor.
func (a *AnswerBox) SetWidth(w int) {
	a.Model.SetWidth(w)
}

// Value returns the raw answer.
func (a AnswerBox) Value() string {
	return a.Model.Value()
}

// Focus and Blur toggle editing.
func (a *AnswerBox) Focus() tea.Cmd { return a.Model.Focus() }
func (a *AnswerBox) Blur()          { a.Model.Blur() }

// View renders the editor with its length counter.
func (a AnswerBox) View() string {
	n := len([]rune(a.Model.Value()))
	if a.Count != nil {
		n = a.Count(a.Model.Value())
	}
	counter := lipgloss.NewStyle().Foreground(theme.TextDim)
	if n >= a.Min {
		counter = counter.Foreground(theme.Success)
	}
	return a.Model.View() + "\n" + counter.Render(fmt.Sprintf("%d/%d characters", n, a.Min))
}
