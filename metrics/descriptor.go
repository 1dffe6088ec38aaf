package metrics

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
)

// Kind is the type of a metric family
type Kind int

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

// String returns the word used on the # TYPE line
func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	default:
		return "untyped"
	}
}

var (
	metricNameRegex = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRegex  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// bucketLabel is added to every histogram bucket line
const bucketLabel = "le"

// Descriptor is the immutable identity of a metric family
type Descriptor struct {
	Name       string
	Help       string
	Kind       Kind
	LabelNames []string
	Buckets    []float64 // Histogram upper bounds, ascending, +Inf implicit
}

// validate checks the descriptor and returns a normalised copy
func (d Descriptor) validate() (Descriptor, error) {
	if !metricNameRegex.MatchString(d.Name) {
		return d, fmt.Errorf("%w: metric name %q", ErrInvalidDescriptor, d.Name)
	}

	seen := make(map[string]struct{}, len(d.LabelNames))
	for _, name := range d.LabelNames {
		if !labelNameRegex.MatchString(name) || strings.HasPrefix(name, "__") {
			return d, fmt.Errorf("%w: label name %q on %s", ErrInvalidDescriptor, name, d.Name)
		}
		if d.Kind == KindHistogram && name == bucketLabel {
			return d, fmt.Errorf("%w: label %q is reserved for histogram buckets", ErrInvalidDescriptor, bucketLabel)
		}
		if _, dup := seen[name]; dup {
			return d, fmt.Errorf("%w: duplicate label %q on %s", ErrInvalidDescriptor, name, d.Name)
		}
		seen[name] = struct{}{}
	}

	out := Descriptor{
		Name:       d.Name,
		Help:       d.Help,
		Kind:       d.Kind,
		LabelNames: slices.Clone(d.LabelNames),
	}

	switch d.Kind {
	case KindCounter, KindGauge:
		if len(d.Buckets) > 0 {
			return d, fmt.Errorf("%w: buckets declared on %s %s", ErrInvalidDescriptor, d.Kind, d.Name)
		}
	case KindHistogram:
		buckets := slices.Clone(d.Buckets)
		if n := len(buckets); n > 0 && math.IsInf(buckets[n-1], +1) {
			buckets = buckets[:n-1]
		}
		if len(buckets) == 0 {
			return d, fmt.Errorf("%w: histogram %s needs at least one bucket", ErrInvalidDescriptor, d.Name)
		}
		for i, b := range buckets {
			if math.IsNaN(b) || math.IsInf(b, 0) {
				return d, fmt.Errorf("%w: non-finite bucket %v on %s", ErrInvalidDescriptor, b, d.Name)
			}
			if i > 0 && b <= buckets[i-1] {
				return d, fmt.Errorf("%w: buckets of %s must be strictly ascending", ErrInvalidDescriptor, d.Name)
			}
		}
		out.Buckets = buckets
	default:
		return d, fmt.Errorf("%w: unknown kind %d", ErrInvalidDescriptor, d.Kind)
	}

	return out, nil
}
