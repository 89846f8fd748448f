package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"customer-dashboard/internal/config"
	apperrors "customer-dashboard/internal/errors"
	"customer-dashboard/internal/observability"
)

const (
	sweepInterval = time.Minute
	minIdleTTL    = 10 * time.Minute
)

// unlimitedPaths are probed by load balancers and scrapers on a schedule.
var unlimitedPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP. A client is forgotten only
// after it has been idle long enough for its bucket to refill, so eviction
// never hands an active client a fresh burst.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	enabled   bool
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(cfg config.SecurityConfig) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(cfg.RateLimitRPS),
		burst:   cfg.RateLimitBurst,
		enabled: cfg.EnableRateLimit,
		idleTTL: minIdleTTL,
		now:     time.Now,
	}
	if cfg.RateLimitRPS > 0 {
		if refill := time.Duration(cfg.RateLimitBurst) * time.Second / time.Duration(cfg.RateLimitRPS); refill > rl.idleTTL {
			rl.idleTTL = refill
		}
	}
	rl.lastSweep = rl.now()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Clients reports how many client buckets are tracked.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// sweep runs with mu held.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idleTTL {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}

func RateLimit(limiter *RateLimiter, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := unlimitedPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !limiter.Allow(ip) {
				requestID := observability.GetRequestID(r.Context())
				logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path, "request_id", requestID)
				w.Header().Set("Retry-After", "1")
				apperrors.WriteError(w, logger, apperrors.RateLimit("Too many requests"), requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
