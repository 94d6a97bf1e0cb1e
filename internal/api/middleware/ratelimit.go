package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/api/metrics"
)

// Limiter admits or rejects one attempt for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LoginRateLimit throttles authentication attempts per client IP.
// When the limiter backend fails the request is rejected.
func LoginRateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			ok, err := limiter.Allow(c.Request().Context(), "login:"+ip)
			if err != nil {
				log.Error().Err(err).Str("ip", ip).Msg("login limiter unavailable")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "rate limiter unavailable")
			}
			if !ok {
				metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
			}
			return next(c)
		}
	}
}
