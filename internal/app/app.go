package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/home"
	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Options holds the dependencies handed to the home screen.
type Options struct {
	Home home.Deps
	Log  *logger.Logger
	// StartGoal, when set, opens that goal's learning path at launch.
	StartGoal string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router    *router.Router
	home      *home.HomeScreen
	startGoal string
	log       *logger.Logger
	width     int
	height    int
}

func newAppModel(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Home.Log == nil {
		opts.Home.Log = opts.Log
	}
	h := home.New(opts.Home)
	return AppModel{
		router:    router.New(h),
		home:      h,
		startGoal: opts.StartGoal,
		log:       opts.Log,
	}
}

func (m AppModel) Init() tea.Cmd {
	if m.startGoal != "" {
		return tea.Batch(m.home.Init(), m.home.OpenGoal(m.startGoal))
	}
	return m.home.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.router.Update(msg)

	case router.PushScreenMsg:
		// A new screen has not seen the terminal size yet.
		return m, tea.Batch(m.router.Update(msg), m.resendSize())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) resendSize() tea.Cmd {
	if m.width == 0 || m.height == 0 {
		return nil
	}
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
	return func() tea.Msg { return size }
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	var status string
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}
	// the root screen is implied by the app name
	trail := m.router.Trail()
	if len(trail) > 1 {
		trail = trail[1:]
	}
	title := strings.Join(trail, " › ")
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := m.router.View(m.width, bodyHeight)
	frame := layout.RenderFrame(header, body, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := newAppModel(opts)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		m.log.Error("tui exited", "error", err)
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
