// Package progress delivers the "goal completed" signal. The engine only
// ever calls Record; where the signal lands is decided here.
package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/pathwise/internal/logger"
)

// Tracker stores a goal's latest progress.
type Tracker interface {
	Record(ctx context.Context, goalID string, percentage int, status string) error
}

// Fanout records to every tracker and joins their errors. A failing tracker
// does not stop the others.
func Fanout(trackers ...Tracker) Tracker {
	live := make(fanout, 0, len(trackers))
	for _, t := range trackers {
		if t != nil {
			live = append(live, t)
		}
	}
	return live
}

type fanout []Tracker

func (f fanout) Record(ctx context.Context, goalID string, percentage int, status string) error {
	var errs []error
	for i, t := range f {
		if err := t.Record(ctx, goalID, percentage, status); err != nil {
			errs = append(errs, fmt.Errorf("tracker %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Reporter records progress without ever returning an error.
type Reporter struct {
	tracker Tracker
	log     *logger.Logger
}

// FireAndForget wraps t so failures are logged, not returned.
func FireAndForget(t Tracker, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{tracker: t, log: log}
}

// Record sends the signal and logs the outcome.
func (r *Reporter) Record(ctx context.Context, goalID string, percentage int, status string) {
	if r == nil || r.tracker == nil {
		return
	}
	if err := r.tracker.Record(ctx, goalID, percentage, status); err != nil {
		r.log.Warn("failed to record progress", "goal_id", goalID, "status", status, "error", err)
		return
	}
	r.log.Info("progress recorded", "goal_id", goalID, "percentage", percentage, "status", status)
}
