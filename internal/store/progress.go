package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type progressRepo struct {
	drv *entsql.Driver
}

func (r *progressRepo) Record(ctx context.Context, goalID string, percentage int, status string) error {
	completions := 0
	if status == StatusCompleted {
		completions = 1
	}
	q, args := entsql.Dialect(r.drv.Dialect()).
		Insert(progressTable).
		Columns("goal_id", "percentage", "status", "completions", "updated_at").
		Values(goalID, percentage, status, completions, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("goal_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("percentage")
				u.SetExcluded("status")
				u.SetExcluded("updated_at")
				u.Add("completions", completions)
			}),
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("record progress for %q: %w", goalID, err)
	}
	return nil
}

func (r *progressRepo) Get(ctx context.Context, goalID string) (*GoalProgress, error) {
	t := entsql.Table(progressTable)
	rows, err := r.query(ctx, entsql.Dialect(r.drv.Dialect()).
		Select().From(t).Where(entsql.EQ(t.C("goal_id"), goalID)))
	if err != nil {
		return nil, fmt.Errorf("get progress for %q: %w", goalID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *progressRepo) List(ctx context.Context) ([]GoalProgress, error) {
	t := entsql.Table(progressTable)
	rows, err := r.query(ctx, entsql.Dialect(r.drv.Dialect()).
		Select().From(t).OrderBy(t.C("goal_id")))
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return rows, nil
}

func (r *progressRepo) Reset(ctx context.Context, goalID string) (int, error) {
	del := entsql.Dialect(r.drv.Dialect()).Delete(progressTable)
	if goalID != "" {
		del.Where(entsql.EQ("goal_id", goalID))
	}
	q, args := del.Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return 0, fmt.Errorf("reset progress: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *progressRepo) query(ctx context.Context, sel *entsql.Selector) ([]GoalProgress, error) {
	q, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GoalProgress
	if err := entsql.ScanSlice(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}
