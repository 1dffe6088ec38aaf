package metrics

import (
	"fmt"
	"slices"
	"sync"
)

// histogramSeries keeps cumulative bucket counts: buckets[i] counts every
// observation <= bounds[i]. The +Inf bucket is count itself.
type histogramSeries struct {
	mu      sync.Mutex
	buckets []uint64
	count   uint64
	sum     float64
}

// Histogram is a cumulative bucketed distribution per label set.
// All series of a histogram share the bucket bounds of its descriptor.
type Histogram struct {
	desc   Descriptor
	series *seriesTable[histogramSeries]
}

func newHistogram(desc Descriptor) *Histogram {
	n := len(desc.Buckets)
	return &Histogram{
		desc: desc,
		series: newSeriesTable(func() *histogramSeries {
			return &histogramSeries{buckets: make([]uint64, n)}
		}),
	}
}

// Observe records one value in the series identified by labels
func (h *Histogram) Observe(labels Labels, value float64) error {
	if !isFinite(value) {
		return fmt.Errorf("%w: histogram %s cannot observe %v", ErrInvalidOperation, h.desc.Name, value)
	}
	values, err := resolve(h.desc.LabelNames, labels)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", h.desc.Name, err)
	}

	s := h.series.getOrCreate(values)

	// Bounds are ascending: skip the buckets below value, bump the rest.
	first, _ := slices.BinarySearch(h.desc.Buckets, value)

	s.mu.Lock()
	for i := first; i < len(s.buckets); i++ {
		s.buckets[i]++
	}
	s.count++
	s.sum += value
	s.mu.Unlock()

	return nil
}

// Snapshot returns a consistent copy of one series
func (h *Histogram) Snapshot(labels Labels) (SeriesSnapshot, error) {
	values, err := resolve(h.desc.LabelNames, labels)
	if err != nil {
		return SeriesSnapshot{}, fmt.Errorf("histogram %s: %w", h.desc.Name, err)
	}
	s, ok := h.series.lookup(values)
	if !ok {
		return SeriesSnapshot{LabelValues: values, Buckets: make([]uint64, len(h.desc.Buckets))}, nil
	}
	return s.read(values), nil
}

func (s *histogramSeries) read(values []string) SeriesSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SeriesSnapshot{
		LabelValues: values,
		Buckets:     slices.Clone(s.buckets),
		Count:       s.count,
		Sum:         s.sum,
	}
}

func (h *Histogram) descriptor() Descriptor { return h.desc }

func (h *Histogram) seriesCount() int { return h.series.len() }

func (h *Histogram) snapshot() []SeriesSnapshot {
	entries := h.series.list()
	out := make([]SeriesSnapshot, len(entries))
	for i, e := range entries {
		out[i] = e.series.read(e.values)
	}
	return out
}
