package home

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

const wordmark = `┌─┐┌─┐┌┬┐┬ ┬┬ ┬┬┌─┐┌─┐
├─┘├─┤ │ ├─┤││││└─┐├┤ 
┴  ┴ ┴ ┴ ┴ ┴└┴┘┴└─┘└─┘`

// panelWidth is the inner width shared by every home section.
func panelWidth(width int) int {
	return min(max(width-8, 24), 68)
}

func renderWordmark(pw int, compact bool) string {
	text := wordmark
	if compact {
		text = "p a t h w i s e"
	}
	return components.Centered(theme.Title.Render(text), pw)
}

// milestone is one goal's node on the trail.
type milestone int

const (
	untouched milestone = iota
	started
	finished
)

func milestoneOf(p store.GoalProgress, ok bool) milestone {
	switch {
	case !ok:
		return untouched
	case p.Status == store.StatusCompleted:
		return finished
	default:
		return started
	}
}

// renderTrail draws the goals as nodes on a line: filled for completed,
// half for started, hollow for untouched.
func renderTrail(ms []milestone, pw int) string {
	if len(ms) == 0 {
		return ""
	}
	nodes := map[milestone]string{
		untouched: theme.Subtitle.Render("○"),
		started:   theme.Warning.Render("◐"),
		finished:  theme.Correct.Render("●"),
	}
	// each node plus its connector must fit in the panel
	seg := max(min((pw-len(ms))/max(len(ms)-1, 1), 6), 1)
	link := theme.Subtitle.Render(strings.Repeat("─", seg))

	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = nodes[m]
	}
	return components.Centered(strings.Join(parts, link), pw)
}

func renderTally(done, total, passes, pw int) string {
	bar := components.ProgressBar{
		Label: fmt.Sprintf("%d of %d goals", done, total),
		Done:  done,
		Total: total,
		Width: pw - 16,
	}
	extra := theme.Note.Render(fmt.Sprintf("%d passes", passes))
	return components.Centered(bar.View()+extra, pw)
}

// greeting is the line under the wordmark.
func greeting(goals int, progress map[string]store.GoalProgress, now time.Time) string {
	if goals == 0 {
		return theme.Warning.Render("No goals found. Point --content at a goal library (see pathwise --help).")
	}
	for _, p := range progress {
		if p.Status == store.StatusCompleted && now.Sub(p.UpdatedAt) < 24*time.Hour {
			return theme.Correct.Render("Goal finished today. Pick the next one.")
		}
	}
	if len(progress) == 0 {
		return theme.Hint.Render("Choose a goal. Each starts with a short entry test.")
	}
	return theme.Hint.Render("Pick up where you left off.")
}

func renderPanel(body string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}
