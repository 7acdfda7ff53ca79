package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apperrors "github.com/lasombra/rebot/internal/errors"
)

// Per-IP limiter state is dropped after this idle period.
const rateLimiterIdleExpiry = 5 * time.Minute

// newRateLimiter throttles the /api surface per client IP. Denials use the
// structured error response shape so bot workers can parse every error body
// the same way.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterIdleExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			denial := apperrors.UnavailableError("rate limit exceeded", nil).
				WithContext("client", identifier)
			return c.JSON(http.StatusTooManyRequests, denial.ToResponse())
		},
	})
}
