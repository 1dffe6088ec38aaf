package metrics

import (
	"math"
	"sync/atomic"
)

// atomicFloat is a float64 updated with a compare-and-swap loop
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *atomicFloat) add(delta float64) {
	for {
		old := f.bits.Load()
		updated := math.Float64bits(math.Float64frombits(old) + delta)
		if f.bits.CompareAndSwap(old, updated) {
			return
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
