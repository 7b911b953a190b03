package model

import "time"

// ThresholdSnapshot records the RF thresholds a run was evaluated with.
// Stored with the run so historical reports stay interpretable after
// the configuration changes.
type ThresholdSnapshot struct {
	RSRP float64 `json:"rsrp"`
	RSRQ float64 `json:"rsrq"`
	SINR float64 `json:"sinr"`
}

// Run is the complete output of one analysis over one table: the
// per-type results in canonical order, the derived findings, and a
// summary of the dataset itself.
type Run struct {
	Source         string    `json:"source"`
	Format         string    `json:"format"`
	Degraded       bool      `json:"degraded,omitempty"`
	DegradedReason string    `json:"degraded_reason,omitempty"`
	SampleCount    int       `json:"sample_count"`
	Start          time.Time `json:"start,omitzero"`
	End            time.Time `json:"end,omitzero"`

	AvgRSRP         *float64 `json:"avg_rsrp,omitempty"`
	AvgRSRQ         *float64 `json:"avg_rsrq,omitempty"`
	AvgSINR         *float64 `json:"avg_sinr,omitempty"`
	AvgThroughputDL *float64 `json:"avg_throughput_dl,omitempty"` // kbps

	Thresholds ThresholdSnapshot `json:"thresholds"`
	Results    []*Result         `json:"results"`
	Findings   []Finding         `json:"findings"`
}

// ResultFor returns the result of the named analysis type, nil when the
// type was not part of the run.
func (r *Run) ResultFor(typ string) *Result {
	for _, res := range r.Results {
		if res.Type == typ {
			return res
		}
	}
	return nil
}

// Areas returns every problem area across all results, in result order.
func (r *Run) Areas() []ProblemArea {
	var areas []ProblemArea
	for _, res := range r.Results {
		areas = append(areas, res.Areas...)
	}
	return areas
}
