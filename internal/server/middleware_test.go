package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"draftdesk/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := chain(okHandler(), securityHeaders())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "default-src 'self'") {
		t.Errorf("Content-Security-Policy = %q", csp)
	}
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	h := chain(okHandler(), requestLogging(zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := chain(okHandler(), cors([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	h := chain(okHandler(), cors([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want unset", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := chain(okHandler(), cors([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestMaxBodySizeRejectsOversized(t *testing.T) {
	h := chain(okHandler(), maxBodySize(10))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestRateLimitMinuteWindow(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, PerMinute: 3, PerHour: 100}
	h := chain(okHandler(), rateLimit(cfg, zap.NewNop()))

	var last *httptest.ResponseRecorder
	for range 4 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 on 4th request", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", last.Header().Get("Retry-After"))
	}
	if last.Header().Get("X-RateLimit-Remaining-Minute") != "0" {
		t.Errorf("Remaining-Minute = %q, want 0", last.Header().Get("X-RateLimit-Remaining-Minute"))
	}
}

func TestRateLimitIsPerIP(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, PerMinute: 1, PerHour: 100}
	h := chain(okHandler(), rateLimit(cfg, zap.NewNop()))

	for i, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d from %s status = %d, want 200", i, addr, rec.Code)
		}
	}
}

func TestRateLimitHourWindow(t *testing.T) {
	limiter := newRateLimiter(config.RateLimitConfig{PerMinute: 1000, PerHour: 2})
	base := time.Now()
	now := base
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		now = base.Add(time.Duration(i) * 2 * time.Minute)
		if ok, _, _, _ := limiter.allow("ip"); !ok {
			t.Fatalf("request %d should pass", i)
		}
	}

	now = base.Add(10 * time.Minute)
	ok, _, _, retryAfter := limiter.allow("ip")
	if ok {
		t.Fatal("third request within the hour should be rejected")
	}
	if retryAfter != 3600 {
		t.Errorf("retryAfter = %d, want 3600", retryAfter)
	}

	// Beyond the hour window the old requests age out.
	now = base.Add(2 * time.Hour)
	if ok, _, _, _ := limiter.allow("ip"); !ok {
		t.Error("request after window expiry should pass")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIP(req); got != "203.0.113.7" {
		t.Errorf("clientIP = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("clientIP = %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientIP(req); got != "10.0.0.1" {
		t.Errorf("clientIP = %q", got)
	}
}
