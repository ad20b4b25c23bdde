package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/api/respond"
)

// --------------------------------------------------------------------------
// Request timing middleware
// --------------------------------------------------------------------------

// TimingMiddleware adds X-Process-Time header to all responses.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		w.Header().Set("X-Process-Time",
			fmt.Sprintf("%.2fms", time.Since(start).Seconds()*1000))
	})
}

// --------------------------------------------------------------------------
// Rate limiting middleware (IP-based token bucket)
// --------------------------------------------------------------------------

// perIPLimiters hands out one token bucket per client IP. Buckets refill at
// the per-window request rate and allow a configured burst above it.
type perIPLimiters struct {
	mu     sync.Mutex
	byIP   map[string]*rate.Limiter
	refill rate.Limit
	burst  int
}

func (l *perIPLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim := l.byIP[ip]
	if lim == nil {
		lim = rate.NewLimiter(l.refill, l.burst)
		l.byIP[ip] = lim
	}
	return lim
}

// RateLimitMiddleware returns middleware that rate-limits by client IP,
// allowing requestsPerWindow sustained requests per window plus burst.
func RateLimitMiddleware(requestsPerWindow int, window time.Duration, burst int) func(http.Handler) http.Handler {
	limiters := &perIPLimiters{
		byIP:   make(map[string]*rate.Limiter),
		refill: rate.Limit(float64(requestsPerWindow) / window.Seconds()),
		burst:  burst,
	}
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiters.get(ip).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				respond.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
