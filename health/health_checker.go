// Package health computes the service status reported by /health.
package health

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/appmetrics/interfaces"
	"github.com/giygas/appmetrics/metrics"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl derives health from the store and the metric registry
type HealthCheckerImpl struct {
	dataStore       interfaces.DataStore
	series          interfaces.SeriesCounter
	connections     *metrics.Gauge
	seriesThreshold int
	now             func() time.Time
}

// NewHealthChecker creates a health checker. seriesThreshold is the series
// count above which the service reports itself degraded; 0 disables it.
func NewHealthChecker(dataStore interfaces.DataStore, m *metrics.AppMetrics, seriesThreshold int) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		dataStore:       dataStore,
		series:          m.Registry,
		connections:     m.ActiveConnections,
		seriesThreshold: seriesThreshold,
		now:             time.Now,
	}
}

// HealthCheck returns the status, its details and the HTTP code to send.
// A degraded service still answers 200: too many series is a warning for
// operators, not a reason to pull the instance out of rotation.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	uptime := now.Sub(h.dataStore.GetServerStartTime())
	seriesCount := h.series.SeriesCount()

	activeConnections, err := h.connections.Value(nil)
	if err != nil {
		activeConnections = 0
	}

	status = "healthy"
	if h.seriesThreshold > 0 && seriesCount > h.seriesThreshold {
		status = "degraded"
	}

	data = map[string]any{
		"timestamp":          now.UTC().Format(interfaces.TimestampLayout),
		"uptime":             FormatUptime(uptime),
		"uptime_seconds":     math.Round(uptime.Seconds()),
		"series_count":       seriesCount,
		"series_threshold":   h.seriesThreshold,
		"active_connections": activeConnections,
		"carts":              h.dataStore.CartCount(),
	}

	return status, data, http.StatusOK
}

// FormatUptime formats a duration as "1d 2h 3m 4s", dropping leading zero units
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
