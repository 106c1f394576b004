package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"timetrack-service/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records a counter and a duration histogram per request,
// labeled by method, route pattern and status. Scrapes of /metrics itself
// are left out so the collector does not count its own polling.
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/metrics" {
			return next(c)
		}

		start := time.Now()
		err := next(c)
		duration := time.Since(start).Seconds()

		method := c.Request().Method
		path := c.Path()
		status := strconv.Itoa(responseStatus(c, err))

		prometheus.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)

		return err
	}
}

// responseStatus returns the status code a request will be answered with.
// A handler error reaches echo's error handler only after the middleware
// chain unwinds, so the committed response status is not set yet; read the
// code off the error instead.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
