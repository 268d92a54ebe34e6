package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/johnquangdev/call-assistant/errors"
)

// RateLimitStore counts requests per identifier
type RateLimitStore = echomw.RateLimiterStore

// NewMemoryRateLimitStore allows perMinute requests per identifier in this process
func NewMemoryRateLimitStore(perMinute int) RateLimitStore {
	return echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
}

// RateLimit limits requests per client IP using store
func RateLimit(store RateLimitStore) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errors.ErrPermissionDenied("unidentified client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				return errors.ErrInternal(err)
			}
			return errors.ErrTooManyRequests()
		},
	})
}
