package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/gqlbind/gqlbind/pkg/log"
	"github.com/labstack/echo/v4"
)

// RequestLogger tags every request with an id and logs its outcome.
func RequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, id)

		start := time.Now()
		err := next(c)

		log.Debug("request complete",
			"id", id,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start),
		)

		return err
	}
}
