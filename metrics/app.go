package metrics

import (
	"fmt"
	"strconv"
	"time"
)

// DurationBuckets are the upper bounds of http_request_duration_seconds
var DurationBuckets = []float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10}

// HTTPLabelNames is the label schema shared by the request counter and histogram
var HTTPLabelNames = []string{"method", "route", "status_code"}

// AppMetrics groups the metric families exported by the service.
// The names are scraped by existing dashboards and must not change.
type AppMetrics struct {
	Registry           *Registry
	RequestsTotal      *Counter
	RequestDuration    *Histogram
	ActiveConnections  *Gauge
	ItemsInCart        *Gauge
	RateLimiterBuckets *Gauge
}

// NewAppMetrics registers every application metric on reg.
// Any error means the registry is unusable and startup should abort.
func NewAppMetrics(reg *Registry) (*AppMetrics, error) {
	m := &AppMetrics{Registry: reg}
	var err error

	if m.RequestsTotal, err = reg.NewCounter(
		"http_requests_total",
		"Total number of HTTP requests",
		HTTPLabelNames...,
	); err != nil {
		return nil, fmt.Errorf("failed to register request counter: %w", err)
	}

	if m.RequestDuration, err = reg.NewHistogram(
		"http_request_duration_seconds",
		"Duration of HTTP requests in seconds",
		DurationBuckets,
		HTTPLabelNames...,
	); err != nil {
		return nil, fmt.Errorf("failed to register request duration histogram: %w", err)
	}

	if m.ActiveConnections, err = reg.NewGauge(
		"active_connections",
		"Number of active connections",
	); err != nil {
		return nil, fmt.Errorf("failed to register active connections gauge: %w", err)
	}

	if m.ItemsInCart, err = reg.NewGauge(
		"items_in_cart",
		"Number of items in shopping cart",
		"user_id",
	); err != nil {
		return nil, fmt.Errorf("failed to register items in cart gauge: %w", err)
	}

	if m.RateLimiterBuckets, err = reg.NewGauge(
		"rate_limiter_buckets_total",
		"Total number of rate limiter buckets (clients seen since the last cleanup)",
	); err != nil {
		return nil, fmt.Errorf("failed to register rate limiter gauge: %w", err)
	}

	return m, nil
}

// ObserveRequest records one finished HTTP transaction
func (m *AppMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) error {
	labels := Labels{
		"method":      method,
		"route":       route,
		"status_code": strconv.Itoa(status),
	}
	if err := m.RequestsTotal.Inc(labels); err != nil {
		return err
	}
	return m.RequestDuration.Observe(labels, elapsed.Seconds())
}

// SetItemsInCart overwrites the cart gauge of one user
func (m *AppMetrics) SetItemsInCart(userID string, items float64) error {
	return m.ItemsInCart.Set(Labels{"user_id": userID}, items)
}

// SetRateLimiterBuckets publishes the number of tracked rate limiter clients
func (m *AppMetrics) SetRateLimiterBuckets(n int) error {
	return m.RateLimiterBuckets.Set(nil, float64(n))
}
