// Package screen defines what the router and the app frame need from a
// screen. Optional behavior is discovered through the small interfaces
// below.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Screen is one page of the TUI. View renders only the body; the app draws
// the header and footer around it.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider supplies text for the right side of the header, such as
// the current step of a path.
type StatusProvider interface {
	Status() string
}

// Closer is called when the screen leaves the stack. Screens that own a
// learning session release its slot here so late results are dropped.
type Closer interface {
	Close()
}
