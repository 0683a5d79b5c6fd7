package clock

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = time.Second / 60

// Loop invokes a frame callback at a fixed interval until it is cancelled.
// Once Run has returned the callback is never invoked again.
type Loop struct {
	interval time.Duration
	frame    func(now time.Time)

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// NewLoop creates a loop calling frame every interval. Non-positive
// intervals fall back to DefaultFrameInterval.
func NewLoop(interval time.Duration, frame func(now time.Time)) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		interval: interval,
		frame:    frame,
		stopCh:   make(chan struct{}),
	}
}

// Run blocks, calling the frame callback on every interval, until ctx is
// done or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			// A stop that raced with the tick wins.
			if l.Stopped() {
				return
			}
			l.frame(now)
		}
	}
}

// Stop deregisters the loop. Safe to call more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.stopCh)
}

// Stopped reports whether the loop has been cancelled.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}
