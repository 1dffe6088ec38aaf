// Package scheduler runs the periodic maintenance jobs of the service:
// publishing and evicting rate limiter buckets, watching metric cardinality
// and pruning old log files.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/appmetrics/interfaces"
	"github.com/giygas/appmetrics/logging"
	"github.com/giygas/appmetrics/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// LogCleaner removes log files past their retention
type LogCleaner interface {
	Cleanup() (int, error)
}

// Scheduler owns the gocron scheduler and the jobs' dependencies
type Scheduler struct {
	metrics         *metrics.AppMetrics
	series          interfaces.SeriesCounter
	rateLimiter     interfaces.RateLimiter
	logCleaner      LogCleaner // nil when file logging is disabled
	seriesThreshold int
	scheduler       *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(m *metrics.AppMetrics, rateLimiter interfaces.RateLimiter, logCleaner LogCleaner, seriesThreshold int) *Scheduler {
	return &Scheduler{
		metrics:         m,
		series:          m.Registry,
		rateLimiter:     rateLimiter,
		logCleaner:      logCleaner,
		seriesThreshold: seriesThreshold,
		scheduler:       gocron.NewScheduler(time.Local),
	}
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start() error {
	s.publishRateLimiterBuckets()

	if _, err := s.scheduler.Every(1).Minute().Do(s.publishRateLimiterBuckets); err != nil {
		return fmt.Errorf("failed to schedule rate limiter gauge: %w", err)
	}

	if _, err := s.scheduler.Every(30).Minutes().Do(s.cleanupRateLimiter); err != nil {
		return fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
	}

	if _, err := s.scheduler.Every(1).Hour().Do(s.checkSeriesCardinality); err != nil {
		return fmt.Errorf("failed to schedule cardinality check: %w", err)
	}

	if s.logCleaner != nil {
		if _, err := s.scheduler.Every(1).Day().At("03:00").Do(s.cleanupLogs); err != nil {
			return fmt.Errorf("failed to schedule log cleanup: %w", err)
		}
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "jobs", s.scheduler.Len())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) publishRateLimiterBuckets() {
	if err := s.metrics.SetRateLimiterBuckets(s.rateLimiter.Len()); err != nil {
		logging.Warn("Failed to publish rate limiter buckets", "error", err)
	}
}

func (s *Scheduler) cleanupRateLimiter() {
	removed := s.rateLimiter.Cleanup()
	if removed > 0 {
		logging.Debug("Evicted idle rate limiter buckets", "removed", removed, "remaining", s.rateLimiter.Len())
	}
	s.publishRateLimiterBuckets()
}

// checkSeriesCardinality warns when label values look unbounded, usually raw
// paths of unmatched routes or user ids. It reports whether the warning fired.
func (s *Scheduler) checkSeriesCardinality() bool {
	if s.seriesThreshold <= 0 {
		return false
	}

	count := s.series.SeriesCount()
	if count <= s.seriesThreshold {
		return false
	}

	logging.Warn("Metric series count above threshold",
		"series", count,
		"threshold", s.seriesThreshold)
	return true
}

func (s *Scheduler) cleanupLogs() {
	removed, err := s.logCleaner.Cleanup()
	if err != nil {
		logging.Error("Failed to clean up old log files", "error", err)
		return
	}
	if removed > 0 {
		logging.Info("Removed old log files", "count", removed)
	}
}
