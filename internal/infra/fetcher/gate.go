package fetcher

import (
	"sync"

	"golang.org/x/time/rate"

	"newsharvest/internal/domain/entity"
	"newsharvest/internal/resilience/circuitbreaker"
)

// siteGate owns the per-site rate limiters and circuit breakers of one
// fetcher instance. Limiters are rebuilt when the site budget changes between
// runs; breakers live for the lifetime of the fetcher. Safe for concurrent
// use.
type siteGate struct {
	breakerPrefix string

	mu       sync.Mutex
	limiters map[int64]*siteLimiter
	breakers map[int64]*circuitbreaker.CircuitBreaker
}

type siteLimiter struct {
	limiter *rate.Limiter
	perHour int
}

func newSiteGate(breakerPrefix string) *siteGate {
	return &siteGate{
		breakerPrefix: breakerPrefix,
		limiters:      make(map[int64]*siteLimiter),
		breakers:      make(map[int64]*circuitbreaker.CircuitBreaker),
	}
}

// limiterFor returns the rate limiter for the site, rebuilding it when the
// configured hourly budget changed since the last run.
func (g *siteGate) limiterFor(site *entity.Site) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.limiters[site.ID]
	if !ok || entry.perHour != site.RateLimitPerHour {
		entry = &siteLimiter{
			limiter: newRateLimiter(site.RateLimitPerHour),
			perHour: site.RateLimitPerHour,
		}
		g.limiters[site.ID] = entry
	}
	return entry.limiter
}

// breakerFor returns the circuit breaker guarding requests to the site.
func (g *siteGate) breakerFor(site *entity.Site) *circuitbreaker.CircuitBreaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	cb, ok := g.breakers[site.ID]
	if !ok {
		cb = circuitbreaker.New(circuitbreaker.EndpointConfig(g.breakerPrefix + ":" + site.Slug))
		g.breakers[site.ID] = cb
	}
	return cb
}

// newRateLimiter converts a per-hour site budget into a token bucket. The
// burst admits up to one minute of budget at once so a run touching several
// endpoints of the same site does not stall between them. A non-positive
// budget disables limiting.
func newRateLimiter(perHour int) *rate.Limiter {
	if perHour <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := perHour / 60
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(perHour)/3600.0), burst)
}
