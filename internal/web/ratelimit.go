package web

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	custommw "github.com/JonMunkholm/PriceView/internal/web/middleware"
	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded")

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	lastScan time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPLimiter allows n requests per window per IP, refilled continuously.
func newIPLimiter(n int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(n) / window.Seconds()),
		burst:    n,
		window:   window,
		lastScan: time.Now(),
	}
}

// allow reports whether ip may make another request now.
func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle for two windows. Called with mu held.
func (l *ipLimiter) sweep(now time.Time) {
	if now.Sub(l.lastScan) < l.window {
		return
	}
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > 2*l.window {
			delete(l.visitors, ip)
		}
	}
	l.lastScan = now
}

// middleware returns an HTTP middleware that rate limits by IP.
func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(custommw.ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
