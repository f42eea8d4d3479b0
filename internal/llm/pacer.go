package llm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between two requests.
const DefaultInterval = 1000 * time.Millisecond

// Pacer enforces a minimum interval between outbound requests, counted from
// the end of the most recent attempt.
//
// Wait and Done bracket a single attempt. Only one attempt holds the pacer at a
// time, so concurrent callers are served one after another. The limiter keeps
// dispatches at least one interval apart even if an attempt ends instantly.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
	gate     chan struct{}

	mu       sync.Mutex
	lastDone time.Time
}

// NewPacer creates a Pacer allowing one attempt per interval.
// A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		gate:     make(chan struct{}, 1),
	}
}

// Interval returns the configured spacing.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait blocks until an attempt may be dispatched, or until ctx is done.
// A nil error must be followed by exactly one call to Done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.gate == nil {
		return ctx.Err()
	}

	select {
	case p.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	remaining := p.interval - time.Since(p.lastDone)
	p.mu.Unlock()

	if err := sleep(ctx, remaining); err != nil {
		<-p.gate
		return err
	}
	if err := p.limiter.Wait(ctx); err != nil {
		<-p.gate
		return err
	}
	return nil
}

// Done records the end of the attempt started after Wait, whether it
// succeeded or failed, and lets the next caller in.
func (p *Pacer) Done() {
	if p.gate == nil {
		return
	}
	p.mu.Lock()
	p.lastDone = time.Now()
	p.mu.Unlock()
	<-p.gate
}

// Backoff sleeps for one full interval. Used after a 429 before retrying.
func (p *Pacer) Backoff(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}
	return sleep(ctx, p.interval)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
