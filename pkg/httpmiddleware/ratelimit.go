package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	// Max requests are allowed per Window, with bursts up to Max.
	Max    int
	Window time.Duration
	// KeyFunc identifies the client. Defaults to ClientIP.
	KeyFunc func(*http.Request) string
	// Now is used for limiter bookkeeping. Defaults to time.Now.
	Now func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per client key.
type Limiter struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewLimiter creates a Limiter. Non-positive Max or Window disable limiting.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	every := rate.Inf
	if cfg.Max > 0 && cfg.Window > 0 {
		every = rate.Every(cfg.Window / time.Duration(cfg.Max))
	}
	return &Limiter{
		cfg:      cfg,
		every:    every,
		visitors: make(map[string]*visitor),
	}
}

// reserve takes a token for key. It returns the tokens left and, when the
// bucket is empty, how long until the next token.
func (l *Limiter) reserve(key string) (remaining int, retryAfter time.Duration, ok bool) {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	v, found := l.visitors[key]
	if !found {
		v = &visitor{limiter: rate.NewLimiter(l.every, max(l.cfg.Max, 1))}
		l.visitors[key] = v
	}
	v.lastSeen = now

	if !v.limiter.AllowN(now, 1) {
		r := v.limiter.ReserveN(now, 1)
		delay := r.DelayFrom(now)
		r.CancelAt(now)
		return 0, delay, false
	}
	return int(math.Max(0, math.Floor(v.limiter.TokensAt(now)))), 0, true
}

// Sweep forgets clients idle for at least a full window.
func (l *Limiter) Sweep() int {
	cutoff := l.cfg.Now().Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			n++
		}
	}
	return n
}

// Run sweeps idle clients every window until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	if l.cfg.Window <= 0 {
		return
	}
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. Every response carries X-RateLimit-Limit and X-RateLimit-Remaining.
func (l *Limiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.every == rate.Inf {
				next.ServeHTTP(w, r)
				return
			}
			remaining, retryAfter, ok := l.reserve(l.cfg.KeyFunc(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit returns a rate limiting middleware whose idle clients are swept
// in the background until ctx is done.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := NewLimiter(cfg)
	go l.Run(ctx)
	return l.Middleware()
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP, or the peer
// address, in that order.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
