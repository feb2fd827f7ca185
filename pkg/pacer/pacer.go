// Package pacer spaces successive upstream calls to stay inside remote rate
// limits. The pacing policy is injected into aggregators so the delay is
// testable and swappable independently of business logic.
package pacer

import (
	"context"
	"sync"
	"time"
)

// Pacer gates sequential upstream calls. Wait blocks until the next call may
// proceed or the context is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Fixed enforces a minimum interval between successive Wait returns. The
// first Wait never blocks. Safe for concurrent use.
type Fixed struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

// NewFixed returns a Fixed pacer with the given minimum interval. A
// non-positive interval disables pacing.
func NewFixed(interval time.Duration) *Fixed {
	return &Fixed{interval: interval}
}

func (f *Fixed) Wait(ctx context.Context) error {
	if f.interval <= 0 {
		return nil
	}

	f.mu.Lock()
	now := time.Now()
	at := f.next
	if at.Before(now) {
		at = now
	}
	f.next = at.Add(f.interval)
	f.mu.Unlock()

	delay := time.Until(at)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Nop performs no pacing.
type Nop struct{}

func (Nop) Wait(context.Context) error { return nil }
