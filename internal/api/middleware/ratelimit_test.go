package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type stubLimiter struct {
	allowFn func(ctx context.Context, key string) (bool, error)
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return s.allowFn(ctx, key)
}

func runLimited(t *testing.T, limiter Limiter, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.1.2.3")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := LoginRateLimit(limiter, zerolog.Nop())(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestLoginRateLimit_Allows(t *testing.T) {
	limiter := &stubLimiter{allowFn: func(_ context.Context, key string) (bool, error) {
		if key != "login:10.1.2.3" {
			t.Fatalf("unexpected key %q", key)
		}
		return true, nil
	}}

	rec := runLimited(t, limiter, func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLoginRateLimit_Rejects(t *testing.T) {
	limiter := &stubLimiter{allowFn: func(context.Context, string) (bool, error) { return false, nil }}

	rec := runLimited(t, limiter, mustNotRun(t))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestLoginRateLimit_FailsClosed(t *testing.T) {
	limiter := &stubLimiter{allowFn: func(context.Context, string) (bool, error) {
		return false, errors.New("redis down")
	}}

	rec := runLimited(t, limiter, mustNotRun(t))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
