package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	return r.insertEvent(ctx, attemptTable,
		[]string{"attempt_id", "goal_id", "stage", "correct", "total", "percentage", "passed", "proficiency"},
		[]any{data.AttemptID, data.GoalID, data.Stage, data.Correct, data.Total, data.Percentage, data.Passed, data.Proficiency},
	)
}

func (r *eventRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error) {
	sel := r.selectEvents(attemptTable, opts)
	if opts.GoalID != "" {
		sel.Where(entsql.EQ(sel.C("goal_id"), opts.GoalID))
	}
	var out []AttemptEvent
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return out, nil
}
