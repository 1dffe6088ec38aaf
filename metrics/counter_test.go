package metrics

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func newTestCounter(t *testing.T) *Counter {
	t.Helper()
	c, err := NewRegistry().NewCounter("http_requests_total", "Total number of HTTP requests", HTTPLabelNames...)
	if err != nil {
		t.Fatalf("Failed to register counter: %v", err)
	}
	return c
}

func TestCounterConcurrentIncrements(t *testing.T) {
	c := newTestCounter(t)
	labels := Labels{"method": "GET", "route": "/", "status_code": "200"}

	const workers = 50
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := c.Inc(labels); err != nil {
					t.Errorf("Inc failed: %v", err)
					return
				}
				if err := c.Add(labels, 0.5); err != nil {
					t.Errorf("Add failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := c.Value(labels)
	if err != nil {
		t.Fatal(err)
	}
	if want := float64(workers * perWorker * 3 / 2); got != want {
		t.Errorf("Expected %v after concurrent increments, got %v", want, got)
	}
}

func TestCounterRejectsInvalidDeltas(t *testing.T) {
	c := newTestCounter(t)
	labels := Labels{"method": "GET", "route": "/", "status_code": "200"}

	if err := c.Add(labels, 2); err != nil {
		t.Fatal(err)
	}

	for _, delta := range []float64{-1, math.NaN(), math.Inf(+1)} {
		if err := c.Add(labels, delta); !errors.Is(err, ErrInvalidOperation) {
			t.Errorf("Add(%v): expected ErrInvalidOperation, got %v", delta, err)
		}
	}

	if got, _ := c.Value(labels); got != 2 {
		t.Errorf("Counter changed after rejected deltas: got %v", got)
	}
}

func TestCounterZeroDeltaCreatesSeries(t *testing.T) {
	c := newTestCounter(t)
	if err := c.Add(Labels{"method": "GET", "route": "/", "status_code": "200"}, 0); err != nil {
		t.Fatal(err)
	}
	if got := c.seriesCount(); got != 1 {
		t.Errorf("Expected 1 series, got %d", got)
	}
}

func TestCounterLabelValidation(t *testing.T) {
	c := newTestCounter(t)

	tests := []struct {
		name   string
		labels Labels
	}{
		{"nil labels", nil},
		{"missing label", Labels{"method": "GET", "route": "/"}},
		{"unknown label", Labels{"method": "GET", "route": "/", "status": "200"}},
		{"extra label", Labels{"method": "GET", "route": "/", "status_code": "200", "user_id": "1"}},
		{"invalid utf8", Labels{"method": "GET", "route": "/\xc3\x28", "status_code": "200"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Inc(tt.labels); !errors.Is(err, ErrInvalidOperation) {
				t.Errorf("Expected ErrInvalidOperation, got %v", err)
			}
		})
	}

	if got := c.seriesCount(); got != 0 {
		t.Errorf("Rejected observations created %d series", got)
	}
}

func TestCounterLabelSetIdentity(t *testing.T) {
	c := newTestCounter(t)

	// Same label set built in a different map literal order
	a := Labels{"method": "GET", "route": "/", "status_code": "200"}
	b := Labels{"status_code": "200", "route": "/", "method": "GET"}
	other := Labels{"method": "GET", "route": "/", "status_code": "404"}

	for _, l := range []Labels{a, b, other} {
		if err := c.Inc(l); err != nil {
			t.Fatal(err)
		}
	}

	if got, _ := c.Value(a); got != 2 {
		t.Errorf("Expected 2 for shared label set, got %v", got)
	}
	if got, _ := c.Value(other); got != 1 {
		t.Errorf("Expected 1 for distinct label set, got %v", got)
	}
	if got := c.seriesCount(); got != 2 {
		t.Errorf("Expected 2 series, got %d", got)
	}
}

func TestCounterValueOfUnseenSeries(t *testing.T) {
	c := newTestCounter(t)
	got, err := c.Value(Labels{"method": "PUT", "route": "/x", "status_code": "500"})
	if err != nil || got != 0 {
		t.Errorf("Expected 0 and no error, got %v, %v", got, err)
	}
	if c.seriesCount() != 0 {
		t.Error("Reading a value must not create a series")
	}
}
