package metrics

import "fmt"

// Gauge is a value per label set that can go up and down
type Gauge struct {
	desc   Descriptor
	series *seriesTable[atomicFloat]
}

func newGauge(desc Descriptor) *Gauge {
	return &Gauge{
		desc:   desc,
		series: newSeriesTable(func() *atomicFloat { return &atomicFloat{} }),
	}
}

// Set overwrites the value of the series
func (g *Gauge) Set(labels Labels, value float64) error {
	s, err := g.get(labels, value)
	if err != nil {
		return err
	}
	s.store(value)
	return nil
}

// Inc adds 1 to the series
func (g *Gauge) Inc(labels Labels) error {
	return g.Add(labels, 1)
}

// Dec subtracts 1 from the series
func (g *Gauge) Dec(labels Labels) error {
	return g.Add(labels, -1)
}

// Add adds an arbitrary signed delta to the series
func (g *Gauge) Add(labels Labels, delta float64) error {
	s, err := g.get(labels, delta)
	if err != nil {
		return err
	}
	s.add(delta)
	return nil
}

// Sub subtracts delta from the series
func (g *Gauge) Sub(labels Labels, delta float64) error {
	return g.Add(labels, -delta)
}

// Value returns the current value of a series, or 0 if it was never touched
func (g *Gauge) Value(labels Labels) (float64, error) {
	values, err := resolve(g.desc.LabelNames, labels)
	if err != nil {
		return 0, fmt.Errorf("gauge %s: %w", g.desc.Name, err)
	}
	if s, ok := g.series.lookup(values); ok {
		return s.load(), nil
	}
	return 0, nil
}

func (g *Gauge) get(labels Labels, v float64) (*atomicFloat, error) {
	if !isFinite(v) {
		return nil, fmt.Errorf("%w: gauge %s cannot take %v", ErrInvalidOperation, g.desc.Name, v)
	}
	values, err := resolve(g.desc.LabelNames, labels)
	if err != nil {
		return nil, fmt.Errorf("gauge %s: %w", g.desc.Name, err)
	}
	return g.series.getOrCreate(values), nil
}

func (g *Gauge) descriptor() Descriptor { return g.desc }

func (g *Gauge) seriesCount() int { return g.series.len() }

func (g *Gauge) snapshot() []SeriesSnapshot {
	entries := g.series.list()
	out := make([]SeriesSnapshot, len(entries))
	for i, e := range entries {
		out[i] = SeriesSnapshot{LabelValues: e.values, Value: e.series.load()}
	}
	return out
}
