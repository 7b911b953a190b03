// Package rf classifies per-sample radio conditions against the
// configured RSRP/RSRQ/SINR thresholds.
package rf

import (
	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// Thresholds are the RF classification boundaries, in the units of the
// metric they bound (RSRP dBm, RSRQ dB, SINR dB).
type Thresholds struct {
	RSRP float64
	RSRQ float64
	SINR float64
}

// Category is the RF state of one sample.
type Category int

const (
	// Unclassified marks samples missing part of the RSRP/RSRQ/SINR
	// triple. They are excluded from percentage denominators.
	Unclassified Category = iota
	Good
	CoverageIssue
	InterferenceIssue
)

// Classify applies the threshold rules to one sample. Coverage takes
// precedence: a sample below the RSRP or RSRQ floor is a coverage issue
// even when SINR is also poor, so interference always means usable power
// with degraded signal quality. The precedence keeps the categories
// mutually exclusive and their percentages summing to 100.
func Classify(s *model.Sample, thr Thresholds) Category {
	if !s.HasRF() {
		return Unclassified
	}
	switch {
	case *s.RSRP < thr.RSRP || *s.RSRQ < thr.RSRQ:
		return CoverageIssue
	case *s.SINR < thr.SINR:
		return InterferenceIssue
	default:
		return Good
	}
}

// tally accumulates one classification pass over a table.
type tally struct {
	classified int // samples with the full RF triple
	excluded   int // samples missing part of the triple

	coverage     int
	interference int
	good         int

	weakRSRP int // coverage issues tripped by the RSRP floor
	poorRSRQ int // coverage issues tripped by the RSRQ floor alone

	coverageCands     []cluster.Candidate
	interferenceCands []cluster.Candidate
	unlocated         int // flagged samples without coordinates
}

func scan(tbl *model.Table, thr Thresholds) tally {
	var t tally
	for i := range tbl.Samples {
		s := &tbl.Samples[i]
		switch Classify(s, thr) {
		case Unclassified:
			t.excluded++
			continue
		case Good:
			t.good++
		case CoverageIssue:
			t.coverage++
			if *s.RSRP < thr.RSRP {
				t.weakRSRP++
			} else {
				t.poorRSRQ++
			}
			if c, ok := cluster.FromSample(s); ok {
				t.coverageCands = append(t.coverageCands, c)
			} else {
				t.unlocated++
			}
		case InterferenceIssue:
			t.interference++
			if c, ok := cluster.FromSample(s); ok {
				t.interferenceCands = append(t.interferenceCands, c)
			} else {
				t.unlocated++
			}
		}
		t.classified++
	}
	return t
}

// pct returns part over total as a percentage, 0 when total is 0.
func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
