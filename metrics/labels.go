package metrics

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// Labels maps declared label names to their values for one observation.
// Every declared name must be present and no other name may appear.
type Labels map[string]string

// labelSeparator cannot appear in valid UTF-8, so joined keys are unambiguous
const labelSeparator = "\xff"

// resolve orders the values of labels by the declared names
func resolve(names []string, labels Labels) ([]string, error) {
	if len(labels) != len(names) {
		for name := range labels {
			if !containsName(names, name) {
				return nil, fmt.Errorf("%w: unknown label %q", ErrInvalidOperation, name)
			}
		}
	}

	values := make([]string, len(names))
	for i, name := range names {
		v, ok := labels[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing label %q", ErrInvalidOperation, name)
		}
		if !utf8.ValidString(v) {
			return nil, fmt.Errorf("%w: label %q is not valid UTF-8", ErrInvalidOperation, name)
		}
		values[i] = v
	}
	return values, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// seriesEntry pairs a series with its ordered label values
type seriesEntry[S any] struct {
	values []string
	series *S
}

// seriesTable holds the series of one family in first-observation order.
// Lookups of existing series only take the read lock, so distinct series
// never contend with each other.
type seriesTable[S any] struct {
	mu      sync.RWMutex
	byKey   map[string]*S
	entries []seriesEntry[S]
	newFn   func() *S
}

func newSeriesTable[S any](newFn func() *S) *seriesTable[S] {
	return &seriesTable[S]{
		byKey: make(map[string]*S),
		newFn: newFn,
	}
}

func (t *seriesTable[S]) getOrCreate(values []string) *S {
	key := strings.Join(values, labelSeparator)

	t.mu.RLock()
	s, ok := t.byKey[key]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.byKey[key]; ok {
		return s
	}
	s = t.newFn()
	t.byKey[key] = s
	t.entries = append(t.entries, seriesEntry[S]{values: values, series: s})
	return s
}

func (t *seriesTable[S]) lookup(values []string) (*S, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byKey[strings.Join(values, labelSeparator)]
	return s, ok
}

// list returns the current entries; the slice is never mutated in place
func (t *seriesTable[S]) list() []seriesEntry[S] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[:len(t.entries):len(t.entries)]
}

func (t *seriesTable[S]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
