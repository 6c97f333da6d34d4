package kenosha

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pacer keeps at least `delay` between the end of one request and the
// start of the next one.
type pacer struct {
	delay time.Duration

	mu      sync.Mutex
	limiter *rate.Limiter
}

func newPacer(delay time.Duration) *pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &pacer{
		delay: delay,
		// burst of 1 so a token is only ever available `delay` after the last one was taken
		limiter: rate.NewLimiter(limit, 1),
	}
}

// wait blocks until the next request may start.
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()
	return limiter.Wait(ctx)
}

// done restarts the delay from now, it is called whenever a response
// (or a failure) comes back.
func (p *pacer) done() {
	if p.delay <= 0 {
		return
	}
	limiter := rate.NewLimiter(rate.Every(p.delay), 1)
	limiter.Allow()

	p.mu.Lock()
	p.limiter = limiter
	p.mu.Unlock()
}
