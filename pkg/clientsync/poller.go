// Package clientsync keeps client-side views of availability and visit requests
// fresh against a backend that offers no push channel. Views poll, prune
// expired state locally, keep last-known-good data across failed fetches,
// and discard stale in-flight responses.
package clientsync

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultSweepInterval is how often the local expiry sweeper re-prunes
	// the cached availability calendar.
	DefaultSweepInterval = 60 * time.Second

	// DefaultPollInterval is how often visit request views re-fetch while
	// active.
	DefaultPollInterval = 20 * time.Second
)

// Poller runs a function on a fixed interval, with an explicit lifecycle
// tied to the consuming view: Start begins ticking (running the function
// once immediately), Stop cancels and waits for the in-flight run. Starting
// a running poller or stopping a stopped one is a no-op.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(interval time.Duration, fn func(ctx context.Context)) *Poller {
	return &Poller{interval: interval, fn: fn}
}

func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done

	go func() {
		defer close(done)
		p.fn(runCtx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				p.fn(runCtx)
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
