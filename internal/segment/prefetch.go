package segment

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Prefetched is a generated unit tied to the segment it was built from.
type Prefetched[T any] struct {
	Segment int
	Value   T
}

// FetchFunc generates the unit for one segment.
type FetchFunc[T any] func(ctx context.Context, segment int) (T, error)

// Prefetcher speculatively generates the next unit while the current one is
// in use. At most one fetch runs at a time and at most one result is cached.
type Prefetcher[T any] struct {
	sem   *semaphore.Weighted
	valid func() bool

	mu       sync.Mutex
	epoch    uint64
	inflight int
	cancel   context.CancelFunc
	ready    *Prefetched[T]
	lastErr  error
}

// NewPrefetcher creates a Prefetcher. valid, when non-nil, is consulted
// before a finished fetch is cached; returning false drops the result.
func NewPrefetcher[T any](valid func() bool) *Prefetcher[T] {
	return &Prefetcher[T]{
		sem:      semaphore.NewWeighted(1),
		valid:    valid,
		inflight: -1,
	}
}

// Start begins fetching segment in the background. It returns false and does
// nothing when a fetch is already running or a result is waiting to be taken.
func (p *Prefetcher[T]) Start(ctx context.Context, segment int, fetch FetchFunc[T]) bool {
	return p.StartNext(ctx, func() int { return segment }, fetch)
}

// StartNext is Start with the segment chosen by choose. choose runs only
// once the fetch slot is held, so a refused start leaves the caller's
// scheduling state untouched.
func (p *Prefetcher[T]) StartNext(ctx context.Context, choose func() int, fetch FetchFunc[T]) bool {
	p.mu.Lock()
	if p.ready != nil {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	if !p.sem.TryAcquire(1) {
		return false
	}
	segment := choose()

	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.epoch++
	epoch := p.epoch
	p.inflight = segment
	p.cancel = cancel
	p.lastErr = nil
	p.mu.Unlock()

	go func() {
		defer p.sem.Release(1)
		defer cancel()

		v, err := fetch(ctx, segment)

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.epoch != epoch {
			return
		}
		p.inflight = -1
		p.cancel = nil
		if err != nil {
			p.lastErr = err
			return
		}
		if p.valid != nil && !p.valid() {
			return
		}
		p.ready = &Prefetched[T]{Segment: segment, Value: v}
	}()
	return true
}

// Take returns the cached result and clears it.
func (p *Prefetcher[T]) Take() (Prefetched[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready == nil {
		return Prefetched[T]{}, false
	}
	r := *p.ready
	p.ready = nil
	return r, true
}

// InFlight reports the segment currently being fetched.
func (p *Prefetcher[T]) InFlight() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight, p.inflight >= 0
}

// LastErr returns the error of the most recent failed fetch, if any.
func (p *Prefetcher[T]) LastErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Abandon cancels the running fetch and drops any cached result. A fetch
// that completes after Abandon is discarded. It returns the segment that was
// dropped, if any.
func (p *Prefetcher[T]) Abandon() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	dropped := p.inflight
	if p.ready != nil {
		dropped = p.ready.Segment
	}
	p.epoch++
	p.inflight = -1
	p.ready = nil
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return dropped, dropped >= 0
}

// Wait blocks until no fetch is running or ctx is done.
func (p *Prefetcher[T]) Wait(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.sem.Release(1)
	return nil
}
