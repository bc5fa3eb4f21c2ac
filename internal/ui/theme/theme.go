// Package theme holds the colors and text styles shared by every screen.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette. Chosen for dark terminals; every foreground reads on BgCard.
var (
	Primary   = lipgloss.Color("#7C83FD")
	Secondary = lipgloss.Color("#2DD4BF")
	Accent    = lipgloss.Color("#FBBF24")
	Highlight = lipgloss.Color("#FDE68A")
	Info      = lipgloss.Color("#60A5FA")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#FB7185")
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#8B95A7")
	BgCard    = lipgloss.Color("#1B2233")
	Border    = lipgloss.Color("#3A4358")
)

func fg(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// Text styles.
var (
	Title     = fg(Primary).Bold(true)
	Body      = fg(Text)
	Subtitle  = fg(TextDim)
	Hint      = fg(TextDim).Italic(true)
	Warning   = fg(Accent)
	ErrorText = fg(Error)
	Code      = fg(Secondary).PaddingLeft(2)
	Note      = fg(Info).Italic(true).PaddingLeft(2)
)

// Answer and selection states.
var (
	Selected  = fg(Primary).Bold(true)
	Correct   = fg(Success).Bold(true)
	Incorrect = fg(Error).Bold(true)
)

// Buttons on the reflection and final screens.
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgCard).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = fg(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

var proficiencyColors = [...]color.Color{Error, Accent, Success}

// ProficiencyLabels names the three proficiency levels, lowest first.
var ProficiencyLabels = [...]string{"novice", "intermediate", "expert"}

// Proficiency renders a 0..2 proficiency level as a colored label.
// Out-of-range values render dim.
func Proficiency(level int) string {
	if level < 0 || level >= len(proficiencyColors) {
		return Subtitle.Render("unrated")
	}
	return fg(proficiencyColors[level]).Bold(true).Render(ProficiencyLabels[level])
}
