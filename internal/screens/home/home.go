package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/screen"
	"github.com/abhisek/pathwise/internal/screens/drill"
	"github.com/abhisek/pathwise/internal/screens/history"
	"github.com/abhisek/pathwise/internal/screens/path"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/layout"
)

// Deps are the collaborators of the home screen and the screens it opens.
// Progress and Events may be nil.
type Deps struct {
	Library  *content.Library
	Progress store.ProgressRepo
	Events   store.EventRepo
	Path     path.Deps
	Drill    drill.Deps
	Log      *logger.Logger
}

type progressLoadedMsg struct {
	rows []store.GoalProgress
	err  error
}

// HomeScreen lists the library's goals with their completion.
type HomeScreen struct {
	deps     Deps
	goals    []content.Goal
	progress map[string]store.GoalProgress
	menu     components.Menu
	now      func() time.Time
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ router.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	h := &HomeScreen{
		deps:     deps,
		goals:    deps.Library.Goals(),
		progress: make(map[string]store.GoalProgress),
		now:      time.Now,
	}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadProgress()
}

// Refresh reloads completion markers when a learning path is closed.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.loadProgress()
}

func (h *HomeScreen) loadProgress() tea.Cmd {
	repo := h.deps.Progress
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		rows, err := repo.List(context.Background())
		return progressLoadedMsg{rows: rows, err: err}
	}
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(h.goals)+2)
	for _, g := range h.goals {
		item := components.MenuItem{
			Label:  g.Title,
			Action: func() tea.Cmd { return h.openPath(g) },
		}
		if p, ok := h.progress[g.ID]; ok && p.Status == store.StatusCompleted {
			item.Marker = "✓"
		}
		items = append(items, item)
	}
	items = append(items,
		components.MenuItem{Label: "HISTORY", Action: h.openHistory, Disabled: h.deps.Events == nil},
		components.MenuItem{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func (h *HomeScreen) openPath(g content.Goal) tea.Cmd {
	s := path.New(h.deps.Path, g, h.deps.Library.Steps(g))
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) openDrill(g content.Goal) tea.Cmd {
	s := drill.New(h.deps.Drill, g, h.deps.Library.GoalText(g))
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) openHistory() tea.Cmd {
	s := history.New(h.deps.Events)
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// OpenGoal starts the learning path for the goal with id. It returns nil
// when the library has no such goal.
func (h *HomeScreen) OpenGoal(id string) tea.Cmd {
	for i, g := range h.goals {
		if g.ID == id {
			h.menu.Selected = i
			return h.openPath(g)
		}
	}
	return nil
}

// selectedGoal returns the goal under the cursor, if the cursor is on one.
func (h *HomeScreen) selectedGoal() (content.Goal, bool) {
	if h.menu.Selected < len(h.goals) {
		return h.goals[h.menu.Selected], true
	}
	return content.Goal{}, false
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		if msg.err != nil {
			h.deps.Log.Warn("progress unavailable", "error", msg.err)
			return h, nil
		}
		h.progress = make(map[string]store.GoalProgress, len(msg.rows))
		for _, r := range msg.rows {
			h.progress[r.GoalID] = r
		}
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		h.menu.Selected = selected
		return h, nil

	case tea.KeyMsg:
		if msg.String() == "p" {
			if g, ok := h.selectedGoal(); ok {
				return h, h.openDrill(g)
			}
			return h, nil
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// Completed returns the number of goals with a completed status.
func (h *HomeScreen) Completed() int {
	n := 0
	for _, g := range h.goals {
		if p, ok := h.progress[g.ID]; ok && p.Status == store.StatusCompleted {
			n++
		}
	}
	return n
}

func (h *HomeScreen) View(width, height int) string {
	// height excludes the app header and footer
	compact := height < 22 || width < 90
	pw := panelWidth(width)

	ms := make([]milestone, len(h.goals))
	for i, g := range h.goals {
		p, ok := h.progress[g.ID]
		ms[i] = milestoneOf(p, ok)
	}
	passes := 0
	for _, p := range h.progress {
		passes += p.Completions
	}

	sections := []string{
		renderWordmark(pw, compact),
		components.Centered(greeting(len(h.goals), h.progress, h.now()), pw),
	}
	if len(h.goals) > 0 {
		if !compact {
			sections = append(sections, renderTrail(ms, pw))
		}
		sections = append(sections, renderTally(h.Completed(), len(h.goals), passes, pw))
	}
	sections = append(sections, components.Centered(h.menu.View(), pw))

	return renderPanel(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Learn"},
		{Key: "p", Description: "Practice"},
		{Key: "ctrl+c", Description: "Quit"},
	}
}
