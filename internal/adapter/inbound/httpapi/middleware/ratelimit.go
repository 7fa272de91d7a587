package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonny/pdm-service/pkg/apierror"
)

const (
	maxClients    = 10000
	evictInterval = 5 * time.Minute
	evictAfter    = 10 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter manages per-IP limiters with periodic eviction of idle clients.
type rateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*client
	limit      rate.Limit
	burst      int
	trustProxy bool
}

func newRateLimiter(requestsPerMinute int, trustProxy bool) *rateLimiter {
	return &rateLimiter{
		clients:    make(map[string]*client),
		limit:      rate.Limit(float64(requestsPerMinute) / 60),
		burst:      requestsPerMinute,
		trustProxy: trustProxy,
	}
}

func (rl *rateLimiter) evictionLoop(ctx context.Context) {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictStale(evictAfter)
		}
	}
}

// evictStale removes clients not seen within maxAge.
func (rl *rateLimiter) evictStale(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// allow reports whether ip may proceed. New IPs are rejected once maxClients
// are tracked.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		if len(rl.clients) >= maxClients {
			return false
		}
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// RateLimit limits requests per minute per remote IP. Idle clients are
// evicted until ctx is cancelled. trustProxy controls whether
// X-Forwarded-For is used for IP extraction. A non-positive rate disables it.
func RateLimit(ctx context.Context, requestsPerMinute int, trustProxy bool) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := newRateLimiter(requestsPerMinute, trustProxy)
	go rl.evictionLoop(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(remoteIP(r, rl.trustProxy)) {
				w.Header().Set("Retry-After", "60")
				apierror.Write(w, apierror.TooManyRequests("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// remoteIP extracts the client IP from the request.
// Only trusts X-Forwarded-For when trustProxy is true (i.e., behind a known reverse proxy).
func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.IndexByte(xff, ','); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}
	}
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
