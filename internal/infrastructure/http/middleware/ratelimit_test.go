package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "user-a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "user-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("fourth request should be rejected")
	}
	if retryAfter < time.Second {
		t.Errorf("expected retry-after of at least a second, got %v", retryAfter)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "user-a"); !allowed {
		t.Fatal("first request for user-a should be allowed")
	}
	if allowed, _, _ := limiter.Allow(ctx, "user-b"); !allowed {
		t.Fatal("first request for user-b should be allowed")
	}
	if allowed, _, _ := limiter.Allow(ctx, "user-a"); allowed {
		t.Fatal("second request for user-a should be rejected")
	}
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	limiter := NewMemoryLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "user-a"); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _, _ := limiter.Allow(ctx, "user-a"); allowed {
		t.Fatal("immediate second request should be rejected")
	}

	time.Sleep(60 * time.Millisecond)

	if allowed, _, _ := limiter.Allow(ctx, "user-a"); !allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	e := echo.New()
	limiter := NewMemoryLimiter(1, time.Minute)
	handler := RateLimit(limiter, nil)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err := handler(c)
	if err == nil {
		t.Fatal("second request should be rejected")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}
