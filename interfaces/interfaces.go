// Package interfaces defines the contracts shared by the HTTP layer, the
// health checker and the scheduler so each can be tested with mocks.
package interfaces

import (
	"net/http"
	"time"
)

// TimestampLayout is the format of every "timestamp" field in JSON responses
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Item is one entry of the demo catalogue served by /api/data
type Item struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DataStore holds the catalogue and the per-user cart counts.
// All methods are safe for concurrent use.
type DataStore interface {
	GetItems() []Item
	SetCart(userID string, items int)
	GetCart(userID string) (int, bool)
	CartCount() int
	GetServerStartTime() time.Time
}

// HealthChecker reports the service status for /health
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// RateLimiter is the view of the client rate limiter used by periodic jobs
type RateLimiter interface {
	// Len returns the number of client buckets currently tracked
	Len() int
	// Cleanup drops buckets that are full again and returns how many were removed
	Cleanup() int
}

// SeriesCounter reports how many label combinations a registry holds
type SeriesCounter interface {
	SeriesCount() int
}

// HTTPHandler defines the API endpoints
type HTTPHandler interface {
	ServeIndex(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	GetData(w http.ResponseWriter, r *http.Request)
	PostData(w http.ResponseWriter, r *http.Request)
	UpdateCart(w http.ResponseWriter, r *http.Request)
	GetCart(w http.ResponseWriter, r *http.Request)
}

// Scheduler defines the lifecycle of periodic background jobs
type Scheduler interface {
	Start() error
	Stop()
}
