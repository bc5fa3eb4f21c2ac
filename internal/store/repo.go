package store

import (
	"context"
	"time"
)

// QueryOpts filters and pages event queries.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	GoalID  string    // attempt events only
	Purpose string    // LLM events only
}

// Progress status values.
const (
	StatusCompleted = "completed"
)

// GoalProgress is the per-goal completion signal.
type GoalProgress struct {
	GoalID      string    `sql:"goal_id"`
	Percentage  int       `sql:"percentage"`
	Status      string    `sql:"status"`
	Completions int       `sql:"completions"`
	UpdatedAt   time.Time `sql:"updated_at"`
}

// ProgressRepo stores the latest progress signal per goal.
type ProgressRepo interface {
	// Record upserts the goal's row. A completed status increments the
	// completion count.
	Record(ctx context.Context, goalID string, percentage int, status string) error

	// Get returns the goal's row or nil when the goal has none.
	Get(ctx context.Context, goalID string) (*GoalProgress, error)

	// List returns every row ordered by goal id.
	List(ctx context.Context) ([]GoalProgress, error)

	// Reset deletes the goal's row, or every row when goalID is empty.
	Reset(ctx context.Context, goalID string) (int, error)
}

// AttemptEventData is one scored entry or final attempt.
type AttemptEventData struct {
	AttemptID   string
	GoalID      string
	Stage       string // "entry" or "final"
	Correct     int
	Total       int
	Percentage  int
	Passed      bool
	Proficiency int
}

// AttemptEvent is a stored attempt with its sequence and timestamp.
type AttemptEvent struct {
	ID          int       `sql:"id"`
	Sequence    int64     `sql:"sequence"`
	Timestamp   time.Time `sql:"timestamp"`
	AttemptID   string    `sql:"attempt_id"`
	GoalID      string    `sql:"goal_id"`
	Stage       string    `sql:"stage"`
	Correct     int       `sql:"correct"`
	Total       int       `sql:"total"`
	Percentage  int       `sql:"percentage"`
	Passed      bool      `sql:"passed"`
	Proficiency int       `sql:"proficiency"`
}

// LLMRequestEventData captures one model call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored model call.
type LLMRequestEvent struct {
	ID           int       `sql:"id"`
	Sequence     int64     `sql:"sequence"`
	Timestamp    time.Time `sql:"timestamp"`
	Provider     string    `sql:"provider"`
	Model        string    `sql:"model"`
	Purpose      string    `sql:"purpose"`
	InputTokens  int       `sql:"input_tokens"`
	OutputTokens int       `sql:"output_tokens"`
	LatencyMs    int64     `sql:"latency_ms"`
	Success      bool      `sql:"success"`
	ErrorMessage string    `sql:"error_message"`
	RequestBody  string    `sql:"request_body"`
	ResponseBody string    `sql:"response_body"`
}

// EventRepo appends and queries domain events. All event types share one
// global sequence.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	AppendAttempt(ctx context.Context, data AttemptEventData) error
	QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error)
}
