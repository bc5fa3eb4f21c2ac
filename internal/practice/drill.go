// Package practice runs an open-ended multiple choice drill over a goal's
// content. Questions are generated per segment of the goal text; while the
// learner answers one, the next is prefetched.
package practice

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/guard"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/segment"
)

// ErrStale is returned when the drill's session is no longer current.
var ErrStale = errors.New("practice session is no longer active")

// Config holds the drill's collaborators.
type Config struct {
	Gateway *gateway.Resilient
	Log     *logger.Logger
	// SegmentSize is the target segment length in runes.
	SegmentSize int
	// Rand drives segment rotation; nil uses the global source.
	Rand *rand.Rand
}

// Item is one delivered question.
type Item struct {
	Segment    int
	Question   gateway.ClosedQuestion
	Prefetched bool
}

// Stats counts answered questions.
type Stats struct {
	Answered int
	Correct  int
}

// Drill is one practice session. It is owned by the view that created it;
// work started under a token that is no longer current is dropped.
type Drill struct {
	cfg      Config
	ctx      context.Context
	goal     content.Goal
	segments []string
	slot     *guard.Slot
	token    guard.Token

	prefetch *segment.Prefetcher[gateway.ClosedQuestion]

	mu       sync.Mutex
	rotation *segment.Rotation
	current  *Item
	stats    Stats
}

// New creates a drill over text, the goal's aggregated content. ctx is the
// session context; canceling it stops any prefetch.
func New(ctx context.Context, cfg Config, goal content.Goal, text string, slot *guard.Slot, token guard.Token) *Drill {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = segment.DefaultSize
	}
	segments := segment.Split(text, segment.Count(text, cfg.SegmentSize))
	d := &Drill{
		cfg:      cfg,
		ctx:      ctx,
		goal:     goal,
		segments: segments,
		slot:     slot,
		token:    token,
		rotation: segment.NewRotation(len(segments), cfg.Rand),
	}
	d.prefetch = segment.NewPrefetcher[gateway.ClosedQuestion](d.owned)
	return d
}

func (d *Drill) owned() bool {
	return d.slot == nil || d.slot.Owns(d.token)
}

// Segments returns the number of segments the content was split into.
func (d *Drill) Segments() int { return len(d.segments) }

// Next returns the next question. A prefetched question is returned at
// once; otherwise the question is generated synchronously. Either way a
// prefetch for a fresh segment is started before returning.
func (d *Drill) Next(ctx context.Context) (Item, error) {
	if !d.owned() {
		return Item{}, ErrStale
	}

	item, ok := d.takePrefetched()
	if !ok {
		// Anything still in flight would arrive too late to be used. Its
		// segment was never shown, so it goes back into the pass.
		dropped, had := d.prefetch.Abandon()

		d.mu.Lock()
		if had {
			d.rotation.Release(dropped)
		}
		idx := d.rotation.Pick()
		d.mu.Unlock()

		q, err := d.generate(ctx, idx)
		if err != nil {
			return Item{}, err
		}
		item = Item{Segment: idx, Question: q}
	}

	if !d.owned() {
		return Item{}, ErrStale
	}
	d.mu.Lock()
	d.current = &item
	d.mu.Unlock()

	d.startPrefetch()
	return item, nil
}

func (d *Drill) takePrefetched() (Item, bool) {
	p, ok := d.prefetch.Take()
	if !ok {
		return Item{}, false
	}
	return Item{Segment: p.Segment, Question: p.Value, Prefetched: true}, true
}

func (d *Drill) startPrefetch() {
	if _, busy := d.prefetch.InFlight(); busy {
		return
	}
	pick := func() int {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.rotation.Pick()
	}

	// The prefetch outlives the call that triggered it but not the session.
	if !d.prefetch.StartNext(d.ctx, pick, d.generate) {
		d.cfg.Log.Debug("practice prefetch skipped")
	}
}

func (d *Drill) generate(ctx context.Context, idx int) (gateway.ClosedQuestion, error) {
	return d.cfg.Gateway.PracticeQuestion(ctx, gateway.PracticeQuestionRequest{
		GoalText:     d.goal.Title,
		Segment:      d.segments[idx],
		SegmentIndex: idx,
		SegmentCount: len(d.segments),
	})
}

// Answer scores the current question and returns whether sel was correct.
func (d *Drill) Answer(sel int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return false, errors.New("no question to answer")
	}
	correct := sel >= 0 && sel == d.current.Question.CorrectOption()
	d.stats.Answered++
	if correct {
		d.stats.Correct++
	}
	d.current = nil
	return correct, nil
}

// Stats returns the running tally.
func (d *Drill) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close drops any outstanding prefetch.
func (d *Drill) Close() {
	d.prefetch.Abandon()
}
