package health

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/giygas/appmetrics/data"
	"github.com/giygas/appmetrics/interfaces"
	"github.com/giygas/appmetrics/metrics"
)

func newTestMetrics(t *testing.T) *metrics.AppMetrics {
	t.Helper()
	m, err := metrics.NewAppMetrics(metrics.NewRegistry())
	if err != nil {
		t.Fatalf("NewAppMetrics failed: %v", err)
	}
	return m
}

func TestHealthCheckHealthy(t *testing.T) {
	store := data.NewDataContainer()
	store.SetCart("42", 3)
	m := newTestMetrics(t)
	if err := m.ActiveConnections.Inc(nil); err != nil {
		t.Fatal(err)
	}

	checker := NewHealthChecker(store, m, 100)
	checker.now = func() time.Time { return store.GetServerStartTime().Add(90 * time.Second) }

	status, details, code := checker.HealthCheck()

	if status != "healthy" {
		t.Errorf("Expected healthy, got %s", status)
	}
	if code != http.StatusOK {
		t.Errorf("Expected 200, got %d", code)
	}
	if details["carts"] != 1 {
		t.Errorf("Expected 1 cart, got %v", details["carts"])
	}
	if details["active_connections"] != float64(1) {
		t.Errorf("Expected 1 active connection, got %v", details["active_connections"])
	}
	if details["uptime"] != "1m 30s" {
		t.Errorf("Expected uptime 1m 30s, got %v", details["uptime"])
	}
	if details["uptime_seconds"] != float64(90) {
		t.Errorf("Expected 90 uptime seconds, got %v", details["uptime_seconds"])
	}
	// active_connections and rate_limiter_buckets_total are pre-created
	if details["series_count"] != 2 {
		t.Errorf("Expected 2 series, got %v", details["series_count"])
	}
}

func TestHealthCheckDegradedOnSeriesCount(t *testing.T) {
	m := newTestMetrics(t)
	for i := 0; i < 5; i++ {
		if err := m.SetItemsInCart(fmt.Sprintf("user-%d", i), 1); err != nil {
			t.Fatal(err)
		}
	}

	checker := NewHealthChecker(data.NewDataContainer(), m, 5)
	status, details, code := checker.HealthCheck()

	if status != "degraded" {
		t.Errorf("Expected degraded with %v series, got %s", details["series_count"], status)
	}
	if code != http.StatusOK {
		t.Errorf("Degraded should still answer 200, got %d", code)
	}
}

func TestHealthCheckThresholdDisabled(t *testing.T) {
	m := newTestMetrics(t)
	for i := 0; i < 5; i++ {
		if err := m.SetItemsInCart(fmt.Sprintf("user-%d", i), 1); err != nil {
			t.Fatal(err)
		}
	}

	checker := NewHealthChecker(data.NewDataContainer(), m, 0)
	if status, _, _ := checker.HealthCheck(); status != "healthy" {
		t.Errorf("Expected healthy with threshold disabled, got %s", status)
	}
}

type fixedSeriesCounter int

func (c fixedSeriesCounter) SeriesCount() int { return int(c) }

func TestHealthCheckUsesSeriesCounter(t *testing.T) {
	checker := NewHealthChecker(data.NewDataContainer(), newTestMetrics(t), 10)

	tests := []struct {
		count    int
		expected string
	}{
		{10, "healthy"},
		{11, "degraded"},
	}

	for _, tt := range tests {
		checker.series = fixedSeriesCounter(tt.count)
		status, details, _ := checker.HealthCheck()
		if status != tt.expected {
			t.Errorf("%d series: expected %s, got %s", tt.count, tt.expected, status)
		}
		if details["series_count"] != tt.count {
			t.Errorf("Expected series_count %d, got %v", tt.count, details["series_count"])
		}
	}
}

func TestHealthCheckTimestampHasMilliseconds(t *testing.T) {
	checker := NewHealthChecker(data.NewDataContainer(), newTestMetrics(t), 0)
	at := time.Date(2024, 3, 9, 14, 5, 7, 42_000_000, time.FixedZone("CET", 3600))
	checker.now = func() time.Time { return at }

	_, details, _ := checker.HealthCheck()

	ts, ok := details["timestamp"].(string)
	if !ok {
		t.Fatalf("Expected string timestamp, got %T", details["timestamp"])
	}
	if ts != "2024-03-09T13:05:07.042Z" {
		t.Errorf("Expected 2024-03-09T13:05:07.042Z, got %s", ts)
	}
	parsed, err := time.Parse(interfaces.TimestampLayout, ts)
	if err != nil {
		t.Fatalf("Timestamp %s does not parse: %v", ts, err)
	}
	if !parsed.Equal(at) {
		t.Errorf("Expected %v, got %v", at, parsed)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
		{3 * time.Hour, "3h 0m 0s"},
		{26*time.Hour + 61*time.Second, "1d 2h 1m 1s"},
	}

	for _, tt := range tests {
		if got := FormatUptime(tt.duration); got != tt.expected {
			t.Errorf("FormatUptime(%v) = %q, want %q", tt.duration, got, tt.expected)
		}
	}
}
