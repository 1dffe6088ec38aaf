// Package metrics holds the in-process metrics registry of the service:
// counters, gauges and histograms keyed by label set, the HTTP middleware
// that feeds them, and the pull-format exposition served on /metrics.
//
// A Registry is built once at startup and shared by reference; there is no
// package-level default registry.
package metrics

import (
	"fmt"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Compile-time check so the registry can back promhttp handlers
var _ prometheus.Gatherer = (*Registry)(nil)

// family is implemented by Counter, Gauge and Histogram
type family interface {
	descriptor() Descriptor
	snapshot() []SeriesSnapshot
	seriesCount() int
}

// SeriesSnapshot is a point-in-time copy of one series.
// Value is set for counters and gauges; Buckets, Count and Sum for histograms.
type SeriesSnapshot struct {
	LabelValues []string
	Value       float64
	Buckets     []uint64
	Count       uint64
	Sum         float64
}

// FamilySnapshot is a descriptor with all of its observed series
type FamilySnapshot struct {
	Descriptor Descriptor
	Series     []SeriesSnapshot
}

// Registry is the set of registered metric families in registration order
type Registry struct {
	mu       sync.RWMutex
	families []family
	names    map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// NewCounter registers a counter
func (r *Registry) NewCounter(name, help string, labelNames ...string) (*Counter, error) {
	desc, err := r.reserve(Descriptor{Name: name, Help: help, Kind: KindCounter, LabelNames: labelNames})
	if err != nil {
		return nil, err
	}
	c := newCounter(desc)
	if len(desc.LabelNames) == 0 {
		c.series.getOrCreate(nil)
	}
	r.append(c)
	return c, nil
}

// NewGauge registers a gauge
func (r *Registry) NewGauge(name, help string, labelNames ...string) (*Gauge, error) {
	desc, err := r.reserve(Descriptor{Name: name, Help: help, Kind: KindGauge, LabelNames: labelNames})
	if err != nil {
		return nil, err
	}
	g := newGauge(desc)
	if len(desc.LabelNames) == 0 {
		g.series.getOrCreate(nil)
	}
	r.append(g)
	return g, nil
}

// NewHistogram registers a histogram with fixed bucket upper bounds
func (r *Registry) NewHistogram(name, help string, buckets []float64, labelNames ...string) (*Histogram, error) {
	desc, err := r.reserve(Descriptor{Name: name, Help: help, Kind: KindHistogram, LabelNames: labelNames, Buckets: buckets})
	if err != nil {
		return nil, err
	}
	h := newHistogram(desc)
	if len(desc.LabelNames) == 0 {
		h.series.getOrCreate(nil)
	}
	r.append(h)
	return h, nil
}

// reserve validates the descriptor and claims its name
func (r *Registry) reserve(d Descriptor) (Descriptor, error) {
	desc, err := d.validate()
	if err != nil {
		return desc, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[desc.Name]; exists {
		return desc, fmt.Errorf("%w: %s", ErrDuplicateName, desc.Name)
	}
	r.names[desc.Name] = struct{}{}
	return desc, nil
}

func (r *Registry) append(f family) {
	r.mu.Lock()
	r.families = append(r.families, f)
	r.mu.Unlock()
}

func (r *Registry) list() []family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.families)
}

// Descriptors returns the registered descriptors in registration order
func (r *Registry) Descriptors() []Descriptor {
	families := r.list()
	out := make([]Descriptor, len(families))
	for i, f := range families {
		out[i] = f.descriptor()
	}
	return out
}

// Collect returns a snapshot of every family in registration order, series
// in first-observation order. Each series is read atomically.
func (r *Registry) Collect() []FamilySnapshot {
	families := r.list()
	out := make([]FamilySnapshot, len(families))
	for i, f := range families {
		out[i] = FamilySnapshot{
			Descriptor: f.descriptor(),
			Series:     f.snapshot(),
		}
	}
	return out
}

// SeriesCount returns the number of live series across all families
func (r *Registry) SeriesCount() int {
	total := 0
	for _, f := range r.list() {
		total += f.seriesCount()
	}
	return total
}
