package metrics

import (
	"net/http"
	"time"

	"github.com/giygas/appmetrics/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware tracks every request: active_connections while it runs, then
// http_requests_total and http_request_duration_seconds once it finishes.
// The finish step runs exactly once on every exit path, including panics,
// and metric errors never reach the response.
func Middleware(m *AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			if err := m.ActiveConnections.Inc(nil); err != nil {
				logging.Warn("Failed to increment active connections", "error", err)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				rec := recover()

				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
					if rec != nil {
						status = http.StatusInternalServerError
					}
				}
				m.finish(r, status, time.Since(start))

				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func (m *AppMetrics) finish(r *http.Request, status int, elapsed time.Duration) {
	if err := m.ActiveConnections.Dec(nil); err != nil {
		logging.Warn("Failed to decrement active connections", "error", err)
	}

	route := routeLabel(r)
	if err := m.ObserveRequest(r.Method, route, status, elapsed); err != nil {
		logging.Warn("Failed to record request metrics",
			"error", err,
			"method", r.Method,
			"route", route,
			"status_code", status)
	}
}

// routeLabel prefers the matched chi pattern and falls back to the raw path.
// Unmatched paths therefore create one series each.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
