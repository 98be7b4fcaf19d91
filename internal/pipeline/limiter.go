package pipeline

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter paces outbound sends per contact domain, on top of the
// ledger's one-per-domain-per-day rule.
type DomainLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewDomainLimiter(sendsPerMin float64, burst int) *DomainLimiter {
	if sendsPerMin <= 0 {
		sendsPerMin = 2
	}
	if burst <= 0 {
		burst = 1
	}
	return &DomainLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(sendsPerMin / 60.0),
		b: burst,
	}
}

func (dl *DomainLimiter) limiterFor(dom string) *rate.Limiter {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if lim, ok := dl.m[dom]; ok {
		return lim
	}
	lim := rate.NewLimiter(dl.r, dl.b)
	dl.m[dom] = lim
	return lim
}

func (dl *DomainLimiter) Wait(ctx context.Context, dom string) error {
	if dom == "" {
		dom = "_"
	}
	return dl.limiterFor(dom).Wait(ctx)
}
