// Package chat implements the polling conversation views: per-appointment
// chat and the help-desk channel. "Live" updates are fixed-interval polls
// by design; there is no push transport.
package chat

import (
	"context"
	"sync"
	"time"

	"clinicdesk/pkg/logging"
)

const DefaultPollInterval = 3 * time.Second

// Poller runs fn immediately and then on a fixed interval until stopped.
// It is the cancellable subscription wrapper around a conversation's
// refresh loop; Stop is safe to call more than once.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context)
	logger   *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(interval time.Duration, fn func(ctx context.Context), logger *logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Poller{interval: interval, fn: fn, logger: logger}
}

// Start begins polling. A second Start without an intervening Stop restarts
// the loop.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)
		p.fn(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.fn(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight tick to finish, so no
// timer leaks past view teardown.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
