// Package aggregate computes the table-wide statistics that are not
// threshold classifications or event reconstructions: throughput
// distribution and bottlenecks, per-cell load, QoS degradation, and
// operational parameter mismatches.
package aggregate

const noteNoSamples = "no samples in input; nothing to analyze"

// pct returns part over total as a percentage, 0 when total is 0.
func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
