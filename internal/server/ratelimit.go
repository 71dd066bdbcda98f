package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"draftdesk/internal/config"
)

// rateLimiter tracks request timestamps per client IP and enforces
// sliding minute and hour windows.
type rateLimiter struct {
	perMinute int
	perHour   int
	now       func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		perMinute: cfg.PerMinute,
		perHour:   cfg.PerHour,
		now:       time.Now,
		clients:   make(map[string][]time.Time),
	}
}

// allow records the request and reports whether it fits both windows,
// along with the remaining quota for response headers. retryAfter is the
// suggested wait in seconds when the request is rejected.
func (l *rateLimiter) allow(ip string) (ok bool, remainingMinute, remainingHour, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// Drop timestamps older than the hour window.
	times := l.clients[ip]
	kept := times[:0]
	for _, t := range times {
		if now.Sub(t) < time.Hour {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	l.clients[ip] = kept

	minuteCount := 0
	for _, t := range kept {
		if now.Sub(t) < time.Minute {
			minuteCount++
		}
	}
	hourCount := len(kept)

	remainingMinute = max(0, l.perMinute-minuteCount)
	remainingHour = max(0, l.perHour-hourCount)

	if minuteCount > l.perMinute {
		return false, remainingMinute, remainingHour, 60
	}
	if hourCount > l.perHour {
		return false, remainingMinute, remainingHour, 3600
	}
	return true, remainingMinute, remainingHour, 0
}

// rateLimit enforces per-IP limits and annotates responses with
// X-RateLimit headers.
func rateLimit(cfg config.RateLimitConfig, logger *zap.Logger) Middleware {
	limiter := newRateLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, remMin, remHour, retryAfter := limiter.allow(ip)

			h := w.Header()
			h.Set("X-RateLimit-Limit-Minute", strconv.Itoa(cfg.PerMinute))
			h.Set("X-RateLimit-Remaining-Minute", strconv.Itoa(remMin))
			h.Set("X-RateLimit-Limit-Hour", strconv.Itoa(cfg.PerHour))
			h.Set("X-RateLimit-Remaining-Hour", strconv.Itoa(remHour))

			if !ok {
				logger.Warn("rate limit exceeded",
					zap.String("client_ip", ip),
					zap.Int("retry_after", retryAfter),
				)
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
