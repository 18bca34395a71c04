package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tinbr-service/pkg/logger"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or generates a new one
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(logger.RequestIDKey)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request().Header.Set(logger.RequestIDKey, requestID)
		}
		c.Response().Header().Set(logger.RequestIDKey, requestID)

		// Picked up by logger.Middleware
		c.Set(logger.RequestIDKey, requestID)

		return next(c)
	}
}
