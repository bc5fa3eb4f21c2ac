package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	db := openTestStore(t).DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode stays "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pathwise.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := s.ProgressRepo().Record(ctx, "git-basics", 100, StatusCompleted); err != nil {
		t.Fatalf("record: %v", err)
	}
	s.Close()

	// Migration must be idempotent.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	p, err := s.ProgressRepo().Get(ctx, "git-basics")
	if err != nil || p == nil {
		t.Fatalf("get after reopen: %v, %v", p, err)
	}
}

func TestProgress_RecordUpserts(t *testing.T) {
	repo := openTestStore(t).ProgressRepo()
	ctx := context.Background()

	if p, err := repo.Get(ctx, "git-basics"); err != nil || p != nil {
		t.Fatalf("expected no row, got %v, %v", p, err)
	}

	for range 2 {
		if err := repo.Record(ctx, "git-basics", 100, StatusCompleted); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := repo.Record(ctx, "git-branching", 100, StatusCompleted); err != nil {
		t.Fatalf("record: %v", err)
	}

	p, err := repo.Get(ctx, "git-basics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Percentage != 100 || p.Status != StatusCompleted || p.Completions != 2 {
		t.Fatalf("unexpected row: %+v", p)
	}
	if time.Since(p.UpdatedAt) > time.Minute {
		t.Fatalf("updated_at not set: %v", p.UpdatedAt)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].GoalID != "git-basics" || all[1].GoalID != "git-branching" {
		t.Fatalf("unexpected list: %+v", all)
	}
}

func TestProgress_Reset(t *testing.T) {
	repo := openTestStore(t).ProgressRepo()
	ctx := context.Background()
	for _, g := range []string{"a", "b", "c"} {
		if err := repo.Record(ctx, g, 100, StatusCompleted); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	n, err := repo.Reset(ctx, "b")
	if err != nil || n != 1 {
		t.Fatalf("reset one: n=%d err=%v", n, err)
	}
	n, err = repo.Reset(ctx, "")
	if err != nil || n != 2 {
		t.Fatalf("reset all: n=%d err=%v", n, err)
	}
}

func TestEvents_SharedSequence(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	if err := repo.AppendAttempt(ctx, AttemptEventData{AttemptID: "a1", GoalID: "g1", Stage: "entry", Correct: 3, Total: 4, Percentage: 75, Proficiency: 2}); err != nil {
		t.Fatalf("append attempt: %v", err)
	}
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "final-test", LatencyMs: 12, Success: true, ResponseBody: "{}"}); err != nil {
		t.Fatalf("append llm: %v", err)
	}
	if err := repo.AppendAttempt(ctx, AttemptEventData{AttemptID: "a2", GoalID: "g2", Stage: "final", Correct: 4, Total: 5, Percentage: 80, Passed: true}); err != nil {
		t.Fatalf("append attempt: %v", err)
	}

	attempts, err := repo.QueryAttempts(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	// newest first
	if attempts[0].AttemptID != "a2" || attempts[0].Sequence != 3 || !attempts[0].Passed {
		t.Fatalf("unexpected newest attempt: %+v", attempts[0])
	}
	if attempts[1].Sequence != 1 || attempts[1].Proficiency != 2 {
		t.Fatalf("unexpected oldest attempt: %+v", attempts[1])
	}

	byGoal, err := repo.QueryAttempts(ctx, QueryOpts{GoalID: "g1"})
	if err != nil || len(byGoal) != 1 {
		t.Fatalf("filter by goal: %v, %v", byGoal, err)
	}

	llmEvents, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "final-test"})
	if err != nil {
		t.Fatalf("query llm: %v", err)
	}
	if len(llmEvents) != 1 || llmEvents[0].Sequence != 2 || llmEvents[0].LatencyMs != 12 {
		t.Fatalf("unexpected llm events: %+v", llmEvents)
	}

	got, err := repo.GetLLMEvent(ctx, llmEvents[0].ID)
	if err != nil || got == nil || got.ResponseBody != "{}" {
		t.Fatalf("get llm event: %+v, %v", got, err)
	}
	if missing, err := repo.GetLLMEvent(ctx, 999); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v, %v", missing, err)
	}
}

func TestEvents_QueryPaging(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()
	for i := range 5 {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Purpose: fmt.Sprintf("p%d", i), Success: true}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	page, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil || len(page) != 2 || page[0].Sequence != 5 {
		t.Fatalf("limit: %+v, %v", page, err)
	}
	page, err = repo.QueryLLMEvents(ctx, QueryOpts{After: 1, Before: 4})
	if err != nil || len(page) != 2 {
		t.Fatalf("after/before: %+v, %v", page, err)
	}
}

func TestDefaultDBPath_Env(t *testing.T) {
	want := filepath.Join(t.TempDir(), "sub", "x.db")
	t.Setenv("PATHWISE_DB", want)
	got, err := DefaultDBPath()
	if err != nil || got != want {
		t.Fatalf("DefaultDBPath() = %q, %v", got, err)
	}
}
