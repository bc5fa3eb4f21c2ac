package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pathwise/internal/router"
	"github.com/abhisek/pathwise/internal/store"
)

type stubEvents struct {
	store.EventRepo
	attempts []store.AttemptEvent
	err      error
}

func (s stubEvents) QueryAttempts(context.Context, store.QueryOpts) ([]store.AttemptEvent, error) {
	return s.attempts, s.err
}

func loaded(t *testing.T, repo store.EventRepo) *Screen {
	t.Helper()
	s := New(repo)
	s.Update(s.Init()())
	return s
}

func sample() []store.AttemptEvent {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []store.AttemptEvent{
		{Timestamp: ts, AttemptID: "a3", GoalID: "sql-joins", Stage: "entry", Correct: 4, Total: 4, Percentage: 100, Proficiency: 2},
		{Timestamp: ts, AttemptID: "a2", GoalID: "git-basics", Stage: "final", Correct: 5, Total: 5, Percentage: 100, Passed: true},
		{Timestamp: ts, AttemptID: "a1", GoalID: "git-basics", Stage: "entry", Correct: 1, Total: 4, Percentage: 25},
	}
}

func TestHistory_GroupsByGoal(t *testing.T) {
	s := loaded(t, stubEvents{attempts: sample()})

	// sql-joins, a3, git-basics, a2, a1
	if len(s.rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(s.rows))
	}
	if s.rows[0].goalID != "sql-joins" || s.rows[0].attempt != nil {
		t.Errorf("first row = %+v, want sql-joins heading", s.rows[0])
	}
	if s.rows[2].goalID != "git-basics" || s.rows[2].attempt != nil {
		t.Errorf("third row = %+v, want git-basics heading", s.rows[2])
	}

	view := s.View(120, 30)
	for _, want := range []string{"git-basics", "sql-joins", "passed", "expert", "novice"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHistory_Details(t *testing.T) {
	s := loaded(t, stubEvents{attempts: sample()})

	// enter on a heading does nothing
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.open != -1 {
		t.Fatal("heading row should not open")
	}

	for range 4 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(120, 30), "attempt a1 · proficiency 0/2") {
		t.Error("expanded details not shown")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if strings.Contains(s.View(120, 30), "attempt a1") {
		t.Error("second enter should close details")
	}
}

func TestHistory_FinalsOnly(t *testing.T) {
	s := loaded(t, stubEvents{attempts: sample()})
	s.Update(tea.KeyPressMsg{Code: 'f', Text: "f"})

	if len(s.rows) != 2 {
		t.Fatalf("rows = %d, want heading plus one final", len(s.rows))
	}
	if s.rows[1].attempt.AttemptID != "a2" {
		t.Errorf("kept %s, want a2", s.rows[1].attempt.AttemptID)
	}
	if s.KeyHints()[2].Description != "All attempts" {
		t.Error("filter hint should flip")
	}
}

func TestHistory_Empty(t *testing.T) {
	s := loaded(t, stubEvents{})
	if !strings.Contains(s.View(80, 20), "No attempts yet") {
		t.Error("expected empty message")
	}
}

func TestHistory_Error(t *testing.T) {
	s := loaded(t, stubEvents{err: errors.New("disk gone")})
	if !strings.Contains(s.View(80, 20), "disk gone") {
		t.Error("expected error message")
	}
}

func TestHistory_EscPops(t *testing.T) {
	s := loaded(t, stubEvents{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
