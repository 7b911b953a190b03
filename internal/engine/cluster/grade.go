package cluster

import "github.com/drivesight/drivesight/internal/model"

// Grader assigns a severity to a cluster.
type Grader func(Cluster) string

// Metric selects which RF mean governs a metric-graded area.
type Metric int

const (
	MetricRSRP Metric = iota
	MetricRSRQ
	MetricSINR
)

func (m Metric) of(c Cluster) *float64 {
	switch m {
	case MetricRSRP:
		return c.AvgRSRP
	case MetricRSRQ:
		return c.AvgRSRQ
	default:
		return c.AvgSINR
	}
}

// ByDeficit grades by how far the cluster mean falls below the governing
// threshold: more than twice the margin below is Critical, more than the
// margin is Medium, else Low. Clusters missing the metric grade Low.
func ByDeficit(m Metric, threshold, margin float64) Grader {
	return func(c Cluster) string {
		v := m.of(c)
		if v == nil {
			return model.SeverityLow
		}
		deficit := threshold - *v
		switch {
		case deficit > 2*margin:
			return model.SeverityCritical
		case deficit > margin:
			return model.SeverityMedium
		default:
			return model.SeverityLow
		}
	}
}

// ByDensity grades by member count relative to the cluster minimum: at
// least three times minSamples is Critical, at least twice is Medium,
// else Low.
func ByDensity(minSamples int) Grader {
	return func(c Cluster) string {
		switch {
		case c.Count >= 3*minSamples:
			return model.SeverityCritical
		case c.Count >= 2*minSamples:
			return model.SeverityMedium
		default:
			return model.SeverityLow
		}
	}
}
