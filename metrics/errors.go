package metrics

import "errors"

var (
	// ErrDuplicateName is returned when a descriptor name is already registered.
	ErrDuplicateName = errors.New("metric name already registered")

	// ErrInvalidDescriptor is returned for malformed names, labels or buckets.
	ErrInvalidDescriptor = errors.New("invalid metric descriptor")

	// ErrInvalidOperation is returned for updates that would break a series
	// contract: negative counter deltas, non-finite values, bad label sets.
	ErrInvalidOperation = errors.New("invalid metric operation")

	// ErrRenderFailure is returned when a snapshot is internally inconsistent.
	ErrRenderFailure = errors.New("metric render failure")
)
