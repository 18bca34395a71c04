package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"tinbr-service/prometheus"
)

// MetricsMiddleware records request count and duration per route
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		duration := time.Since(start).Seconds()
		method := c.Request().Method
		path := c.Path()
		code := c.Response().Status
		status := strconv.Itoa(code)

		prometheus.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		prometheus.RecordStatusCategory(code, method, path)

		return nil
	}
}
