package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with exponential backoff and
// jitter. Cancellation and truncation are never retried; an invalid response
// is retried once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p. With MaxAttempts <= 1 it returns p unchanged.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	return &RetryProvider{inner: p, config: cfg}
}

// budget tracks one Generate call across its attempts.
type budget struct {
	cfg     RetryConfig
	used    int
	wait    time.Duration
	invalid bool
}

// again reports whether err earns another attempt and, if so, how long to
// wait before it.
func (b *budget) again(err error) (time.Duration, bool) {
	b.used++
	if b.used >= b.cfg.MaxAttempts {
		return 0, false
	}
	switch Classify(err) {
	case ClassTimeout, ClassCanceled, ClassMaxTokens:
		return 0, false
	case ClassInvalid:
		if b.invalid {
			return 0, false
		}
		b.invalid = true
	}

	if b.wait == 0 {
		b.wait = b.cfg.InitialWait
	} else {
		b.wait = min(time.Duration(float64(b.wait)*b.cfg.Multiplier), b.cfg.MaxWait)
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter, true
	}
	return jitter(min(b.wait, b.cfg.MaxWait)), true
}

// jitter spreads d by up to 20% either way.
func jitter(d time.Duration) time.Duration {
	spread := float64(d) * 0.2 * (2*rand.Float64() - 1)
	return max(d+time.Duration(spread), 0)
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	b := &budget{cfg: r.config}
	for {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		wait, ok := b.again(err)
		if !ok {
			return nil, err
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}
