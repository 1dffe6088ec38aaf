package metrics

import "fmt"

// Counter is a monotonically increasing value per label set
type Counter struct {
	desc   Descriptor
	series *seriesTable[atomicFloat]
}

func newCounter(desc Descriptor) *Counter {
	return &Counter{
		desc:   desc,
		series: newSeriesTable(func() *atomicFloat { return &atomicFloat{} }),
	}
}

// Inc adds 1 to the series identified by labels
func (c *Counter) Inc(labels Labels) error {
	return c.Add(labels, 1)
}

// Add adds delta to the series identified by labels, creating it at 0 if needed.
// Negative or non-finite deltas are rejected.
func (c *Counter) Add(labels Labels, delta float64) error {
	if delta < 0 || !isFinite(delta) {
		return fmt.Errorf("%w: counter %s cannot add %v", ErrInvalidOperation, c.desc.Name, delta)
	}
	values, err := resolve(c.desc.LabelNames, labels)
	if err != nil {
		return fmt.Errorf("counter %s: %w", c.desc.Name, err)
	}
	c.series.getOrCreate(values).add(delta)
	return nil
}

// Value returns the current value of a series, or 0 if it was never observed
func (c *Counter) Value(labels Labels) (float64, error) {
	values, err := resolve(c.desc.LabelNames, labels)
	if err != nil {
		return 0, fmt.Errorf("counter %s: %w", c.desc.Name, err)
	}
	if s, ok := c.series.lookup(values); ok {
		return s.load(), nil
	}
	return 0, nil
}

func (c *Counter) descriptor() Descriptor { return c.desc }

func (c *Counter) seriesCount() int { return c.series.len() }

func (c *Counter) snapshot() []SeriesSnapshot {
	entries := c.series.list()
	out := make([]SeriesSnapshot, len(entries))
	for i, e := range entries {
		out[i] = SeriesSnapshot{LabelValues: e.values, Value: e.series.load()}
	}
	return out
}
