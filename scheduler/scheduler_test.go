package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/giygas/appmetrics/metrics"
)

// Jobs run on gocron goroutines, so the mocks lock
type mockRateLimiter struct {
	mu       sync.Mutex
	buckets  int
	idle     int
	cleanups int
}

func (m *mockRateLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buckets
}

func (m *mockRateLimiter) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups++
	removed := m.idle
	m.buckets -= removed
	m.idle = 0
	return removed
}

type mockLogCleaner struct {
	mu      sync.Mutex
	removed int
	err     error
	calls   int
}

func (m *mockLogCleaner) Cleanup() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.removed, m.err
}

func newTestMetrics(t *testing.T) *metrics.AppMetrics {
	t.Helper()
	m, err := metrics.NewAppMetrics(metrics.NewRegistry())
	if err != nil {
		t.Fatalf("NewAppMetrics failed: %v", err)
	}
	return m
}

func TestPublishRateLimiterBuckets(t *testing.T) {
	m := newTestMetrics(t)
	rl := &mockRateLimiter{buckets: 7}
	s := NewScheduler(m, rl, nil, 0)

	s.publishRateLimiterBuckets()

	if v, _ := m.RateLimiterBuckets.Value(nil); v != 7 {
		t.Errorf("Expected rate_limiter_buckets_total 7, got %v", v)
	}
}

func TestCleanupRateLimiterRepublishes(t *testing.T) {
	m := newTestMetrics(t)
	rl := &mockRateLimiter{buckets: 10, idle: 4}
	s := NewScheduler(m, rl, nil, 0)

	s.publishRateLimiterBuckets()
	s.cleanupRateLimiter()

	if rl.cleanups != 1 {
		t.Errorf("Expected one cleanup, got %d", rl.cleanups)
	}
	if v, _ := m.RateLimiterBuckets.Value(nil); v != 6 {
		t.Errorf("Expected rate_limiter_buckets_total 6 after cleanup, got %v", v)
	}
}

func TestCheckSeriesCardinality(t *testing.T) {
	m := newTestMetrics(t)
	// active_connections and rate_limiter_buckets_total exist from the start
	base := m.Registry.SeriesCount()

	s := NewScheduler(m, &mockRateLimiter{}, nil, base+2)
	if s.checkSeriesCardinality() {
		t.Error("Should not warn below the threshold")
	}

	for i := 0; i < 3; i++ {
		if err := m.SetItemsInCart(fmt.Sprintf("user-%d", i), 1); err != nil {
			t.Fatal(err)
		}
	}
	if !s.checkSeriesCardinality() {
		t.Errorf("Expected warning with %d series over threshold %d", m.Registry.SeriesCount(), base+2)
	}

	disabled := NewScheduler(m, &mockRateLimiter{}, nil, 0)
	if disabled.checkSeriesCardinality() {
		t.Error("A zero threshold disables the check")
	}
}

type fixedSeriesCounter int

func (c fixedSeriesCounter) SeriesCount() int { return int(c) }

func TestCheckSeriesCardinalityBoundary(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		expected bool
	}{
		{"below", 99, false},
		{"at threshold", 100, false},
		{"above", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(newTestMetrics(t), &mockRateLimiter{}, nil, 100)
			s.series = fixedSeriesCounter(tt.count)

			if got := s.checkSeriesCardinality(); got != tt.expected {
				t.Errorf("checkSeriesCardinality() with %d series = %v, want %v", tt.count, got, tt.expected)
			}
		})
	}
}

func TestCleanupLogs(t *testing.T) {
	m := newTestMetrics(t)

	cleaner := &mockLogCleaner{removed: 2}
	NewScheduler(m, &mockRateLimiter{}, cleaner, 0).cleanupLogs()
	if cleaner.calls != 1 {
		t.Errorf("Expected one log cleanup, got %d", cleaner.calls)
	}

	failing := &mockLogCleaner{err: errors.New("permission denied")}
	NewScheduler(m, &mockRateLimiter{}, failing, 0).cleanupLogs()
	if failing.calls != 1 {
		t.Errorf("Expected one log cleanup attempt, got %d", failing.calls)
	}
}

func TestStartAndStop(t *testing.T) {
	m := newTestMetrics(t)
	rl := &mockRateLimiter{buckets: 3}

	tests := []struct {
		name         string
		cleaner      LogCleaner
		expectedJobs int
	}{
		{"without log cleanup", nil, 3},
		{"with log cleanup", &mockLogCleaner{}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(m, rl, tt.cleaner, 100)
			if err := s.Start(); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			defer s.Stop()

			if s.scheduler.Len() != tt.expectedJobs {
				t.Errorf("Expected %d jobs, got %d", tt.expectedJobs, s.scheduler.Len())
			}
			// Start publishes once without waiting for the first tick
			if v, _ := m.RateLimiterBuckets.Value(nil); v != 3 {
				t.Errorf("Expected rate_limiter_buckets_total 3, got %v", v)
			}
		})
	}
}
