package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	ownerID := uuid.New()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow(ownerID) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow(ownerID) {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentOwners(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	owner1 := uuid.New()
	owner2 := uuid.New()

	// Exhaust owner1's burst
	for i := 0; i < 3; i++ {
		if !rl.Allow(owner1) {
			t.Errorf("Owner1 request %d should be allowed", i+1)
		}
	}

	// Owner1 should be rate limited
	if rl.Allow(owner1) {
		t.Error("Owner1 should be rate limited")
	}

	// Owner2 should still have its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow(owner2) {
			t.Errorf("Owner2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimitMiddleware_SkipsUnauthenticated(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	handlerCalled := false
	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		handlerCalled = true
		return c.String(http.StatusOK, "OK")
	})

	// No owner in context, should pass through without rate limiting
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/periods/current", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handlerCalled = false

		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !handlerCalled {
			t.Errorf("Request %d should have reached the handler", i+1)
		}
	}
}

func TestRateLimitMiddleware_LimitsOwner(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 2)
	defer rl.Stop()

	ownerID := uuid.New()

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	newCtx := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		ctx := context.WithValue(c.Request().Context(), OwnerIDKey, ownerID)
		c.SetRequest(c.Request().WithContext(ctx))
		return c, rec
	}

	// Burst of 2 is allowed
	for i := 0; i < 2; i++ {
		c, rec := newCtx()
		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d expected 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") == "" {
			t.Error("Expected rate limit headers on successful response")
		}
	}

	// Third request is rejected with headers set
	c, rec := newCtx()
	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestRateLimiter_GetState(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 10)
	defer rl.Stop()

	ownerID := uuid.New()

	// Unknown owner reports the full burst
	remaining, _ := rl.GetState(ownerID)
	if remaining != 10 {
		t.Errorf("Expected 10 remaining, got %d", remaining)
	}

	rl.Allow(ownerID)
	remaining, _ = rl.GetState(ownerID)
	if remaining >= 10 {
		t.Errorf("Expected fewer than 10 remaining after a request, got %d", remaining)
	}
}
