package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-b/internal/queue"
)

// EventSink is satisfied by service.EventDispatcher. Enqueue must not block.
type EventSink interface {
	Enqueue(ev queue.APIRequestEvent) bool
}

// RequestEvents hands one APIRequestEvent per request to sink once the
// handler has returned. A full sink drops the event; the response is never
// delayed. A nil sink disables the middleware.
func RequestEvents(sink EventSink, version string) echo.MiddlewareFunc {
	if sink == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			sink.Enqueue(queue.APIRequestEvent{
				Method:    c.Request().Method,
				Path:      c.Request().URL.Path,
				Route:     c.Path(),
				Status:    status,
				Version:   version,
				RemoteIP:  c.RealIP(),
				LatencyMS: time.Since(start).Milliseconds(),
				Cache:     c.Response().Header().Get(HeaderXCache),
				ServedAt:  start.UTC().Format(time.RFC3339),
			})
			return err
		}
	}
}
