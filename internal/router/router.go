// Package router keeps the stack of open screens. The home screen sits at
// the bottom and is never popped.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/screen"
)

// Navigation messages. Screens return them as commands instead of holding a
// reference to the router.
type (
	PushScreenMsg struct{ Screen screen.Screen }
	PopScreenMsg  struct{}
	// HomeMsg closes every screen above the bottom one.
	HomeMsg struct{}
)

// Refresher is implemented by screens that reload data when a screen above
// them is popped.
type Refresher interface {
	Refresh() tea.Cmd
}

type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

// Push opens s above the current screen and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen and refreshes the one it uncovers. The root
// screen stays.
func (r *Router) Pop() tea.Cmd {
	return r.popTo(r.top() - 1)
}

// popTo closes screens until depth-1 == i, then refreshes the new top.
func (r *Router) popTo(i int) tea.Cmd {
	if i < 0 || i >= r.top() {
		return nil
	}
	for j := r.top(); j > i; j-- {
		closeScreen(r.stack[j])
		r.stack[j] = nil
	}
	r.stack = r.stack[:i+1]
	if rf, ok := r.Active().(Refresher); ok {
		return rf.Refresh()
	}
	return nil
}

// CloseAll closes every screen, top first. The stack is left as is.
func (r *Router) CloseAll() {
	for j := r.top(); j >= 0; j-- {
		closeScreen(r.stack[j])
	}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[r.top()]
}

func (r *Router) Depth() int { return len(r.stack) }

// Trail returns the titles from root to top.
func (r *Router) Trail() []string {
	out := make([]string, len(r.stack))
	for i, s := range r.stack {
		out[i] = s.Title()
	}
	return out
}

// Update applies navigation messages and passes everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case HomeMsg:
		return r.popTo(0)
	}

	if len(r.stack) == 0 {
		return nil
	}
	next, cmd := r.stack[r.top()].Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if a := r.Active(); a != nil {
		return a.View(width, height)
	}
	return ""
}
