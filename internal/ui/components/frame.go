package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/ui/theme"
)

// ContentWidth is the width of stacked sections inside a Frame: the frame
// minus border and padding, between 20 and limit columns.
func ContentWidth(frameWidth, limit int) int {
	return min(max(frameWidth-6, 20), limit)
}

// Frame centers content in a rounded border filling width×height.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card boxes content; cw includes the border.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(content)
}

// Section renders a titled block of prose wrapped to cw.
func Section(title, body string, cw int) string {
	head := theme.Title.Render(title)
	if body == "" {
		return head
	}
	return head + "\n" + lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(body)
}

// Centered places s in the middle of a width-wide line.
func Centered(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
