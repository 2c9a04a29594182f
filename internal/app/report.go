package app

import (
	"context"
	"sort"

	"workboard/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// MetricSample is one gathered series. Histograms report their sample count
// under the family name with a "_count" suffix.
type MetricSample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

type Report struct {
	Status  domain.StoreStatus `json:"status"`
	Metrics []MetricSample     `json:"metrics"`
	// MirroredCounts is the Redis copy of the partition counts, present only
	// when Redis is enabled and reachable.
	MirroredCounts map[string]int64 `json:"mirrored_counts,omitempty"`
}

// Report combines the store status with everything recorded on the
// container's registry during this process.
func (c *Container) Report(ctx context.Context) (Report, error) {
	st, err := c.Store.Status(ctx)
	if err != nil {
		return Report{}, err
	}
	samples, err := GatherSamples(c.Registry)
	if err != nil {
		return Report{}, err
	}

	r := Report{Status: st, Metrics: samples}
	if c.Redis != nil && c.Redis.Healthy(ctx) {
		counts, err := c.Redis.Counts(ctx)
		if err != nil {
			c.Logger.Warn("reading mirrored counts", zap.Error(err))
		} else {
			r.MirroredCounts = counts
		}
	}
	return r, nil
}

func GatherSamples(g prometheus.Gatherer) ([]MetricSample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	out := make([]MetricSample, 0)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := MetricSample{Name: mf.GetName()}
			if labels := m.GetLabel(); len(labels) > 0 {
				s.Labels = make(map[string]string, len(labels))
				for _, l := range labels {
					s.Labels[l.GetName()] = l.GetValue()
				}
			}
			switch {
			case m.GetCounter() != nil:
				s.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				s.Value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				s.Name += "_count"
				s.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
