package metrics

import (
	"fmt"
	"io"
	"math"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Gather converts the current snapshot into client_model families so the
// registry can be served by promhttp. Every registered family is returned in
// registration order, including families that have no series yet.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	snapshots := r.Collect()
	out := make([]*dto.MetricFamily, 0, len(snapshots))
	for _, fs := range snapshots {
		mf, err := toMetricFamily(fs)
		if err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	return out, nil
}

// helpEscaper matches the HELP escaping of expfmt
var helpEscaper = strings.NewReplacer("\\", `\\`, "\n", `\n`)

// Render writes the registry in the text exposition format. A family without
// series is written as its HELP and TYPE lines only, which expfmt refuses to
// encode on its own.
func (r *Registry) Render(w io.Writer) error {
	families, err := r.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if len(mf.GetMetric()) == 0 {
			err = writeHeader(w, mf)
		} else {
			_, err = expfmt.MetricFamilyToText(w, mf)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRenderFailure, mf.GetName(), err)
		}
	}
	return nil
}

func writeHeader(w io.Writer, mf *dto.MetricFamily) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n",
		mf.GetName(), helpEscaper.Replace(mf.GetHelp()),
		mf.GetName(), strings.ToLower(mf.GetType().String()))
	return err
}

func toMetricFamily(fs FamilySnapshot) (*dto.MetricFamily, error) {
	d := fs.Descriptor
	mf := &dto.MetricFamily{
		Name:   proto.String(d.Name),
		Help:   proto.String(d.Help),
		Metric: make([]*dto.Metric, 0, len(fs.Series)),
	}

	switch d.Kind {
	case KindCounter:
		mf.Type = dto.MetricType_COUNTER.Enum()
	case KindGauge:
		mf.Type = dto.MetricType_GAUGE.Enum()
	case KindHistogram:
		mf.Type = dto.MetricType_HISTOGRAM.Enum()
	default:
		return nil, fmt.Errorf("%w: %s has unknown kind %d", ErrRenderFailure, d.Name, d.Kind)
	}

	for _, s := range fs.Series {
		if len(s.LabelValues) != len(d.LabelNames) {
			return nil, fmt.Errorf("%w: %s series has %d label values, want %d",
				ErrRenderFailure, d.Name, len(s.LabelValues), len(d.LabelNames))
		}

		m := &dto.Metric{Label: labelPairs(d.LabelNames, s.LabelValues)}
		switch d.Kind {
		case KindCounter:
			m.Counter = &dto.Counter{Value: proto.Float64(s.Value)}
		case KindGauge:
			m.Gauge = &dto.Gauge{Value: proto.Float64(s.Value)}
		case KindHistogram:
			h, err := toHistogram(d, s)
			if err != nil {
				return nil, err
			}
			m.Histogram = h
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf, nil
}

func labelPairs(names, values []string) []*dto.LabelPair {
	if len(names) == 0 {
		return nil
	}
	pairs := make([]*dto.LabelPair, len(names))
	for i := range names {
		pairs[i] = &dto.LabelPair{
			Name:  proto.String(names[i]),
			Value: proto.String(values[i]),
		}
	}
	return pairs
}

func toHistogram(d Descriptor, s SeriesSnapshot) (*dto.Histogram, error) {
	if len(s.Buckets) != len(d.Buckets) {
		return nil, fmt.Errorf("%w: %s series has %d buckets, want %d",
			ErrRenderFailure, d.Name, len(s.Buckets), len(d.Buckets))
	}

	h := &dto.Histogram{
		SampleCount: proto.Uint64(s.Count),
		SampleSum:   proto.Float64(s.Sum),
		Bucket:      make([]*dto.Bucket, 0, len(d.Buckets)+1),
	}

	var prev uint64
	for i, bound := range d.Buckets {
		c := s.Buckets[i]
		if c < prev || c > s.Count {
			return nil, fmt.Errorf("%w: %s bucket le=%v is not cumulative", ErrRenderFailure, d.Name, bound)
		}
		prev = c
		h.Bucket = append(h.Bucket, &dto.Bucket{
			UpperBound:      proto.Float64(bound),
			CumulativeCount: proto.Uint64(c),
		})
	}
	h.Bucket = append(h.Bucket, &dto.Bucket{
		UpperBound:      proto.Float64(math.Inf(+1)),
		CumulativeCount: proto.Uint64(s.Count),
	})

	return h, nil
}
