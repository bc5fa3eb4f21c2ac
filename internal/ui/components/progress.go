package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Done    int
	Total   int
	Width   int
	Percent bool
}

// NewStepProgress shows the learner's position as "Step n/total".
func NewStepProgress(index, total, width int) ProgressBar {
	return ProgressBar{
		Label: fmt.Sprintf("Step %d/%d", index+1, total),
		Done:  index + 1,
		Total: total,
		Width: width,
	}
}

// NewScoreBar shows a percentage score.
func NewScoreBar(label string, percentage, width int) ProgressBar {
	return ProgressBar{Label: label, Done: percentage, Total: 100, Width: width, Percent: true}
}

func (p ProgressBar) fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	return max(0, min(f, 1))
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	suffix := ""
	if p.Percent {
		suffix = fmt.Sprintf("  %d%%", p.Done)
	}

	barWidth := p.Width - lipgloss.Width(result) - len(suffix)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * p.fraction())

	result += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	if suffix != "" {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
	}
	return result
}
