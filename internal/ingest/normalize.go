package ingest

import (
	"sort"

	"github.com/drivesight/drivesight/internal/model"
)

// Metric plausibility ranges. Values outside them are measurement noise
// or export artifacts; they are cleared to missing and counted.
const (
	minRSRP, maxRSRP = -140.0, -44.0
	minRSRQ, maxRSRQ = -24.0, 0.0
	minSINR, maxSINR = -10.0, 40.0
	minMOS, maxMOS   = 1.0, 5.0
)

// Normalize orders samples by timestamp and clears implausible values,
// counting each repair on the table.
func Normalize(t *model.Table) {
	sort.SliceStable(t.Samples, func(i, j int) bool {
		return t.Samples[i].Timestamp.Before(t.Samples[j].Timestamp)
	})
	for i := range t.Samples {
		t.Anomalies += repair(&t.Samples[i])
	}
}

func repair(s *model.Sample) int {
	n := 0
	n += clearOutside(&s.RSRP, minRSRP, maxRSRP)
	n += clearOutside(&s.RSRQ, minRSRQ, maxRSRQ)
	n += clearOutside(&s.SINR, minSINR, maxSINR)
	n += clearOutside(&s.MOS, minMOS, maxMOS)
	n += clearOutside(&s.Latitude, -90, 90)
	n += clearOutside(&s.Longitude, -180, 180)
	if s.ThroughputDL != nil && *s.ThroughputDL < 0 {
		s.ThroughputDL = nil
		n++
	}
	if s.ThroughputUL != nil && *s.ThroughputUL < 0 {
		s.ThroughputUL = nil
		n++
	}
	if s.QCI != nil && (*s.QCI < 0 || *s.QCI > 255) {
		s.QCI = nil
		n++
	}
	// A lone coordinate is useless for clustering.
	if (s.Latitude == nil) != (s.Longitude == nil) {
		s.Latitude, s.Longitude = nil, nil
		n++
	}
	return n
}

func clearOutside(v **float64, lo, hi float64) int {
	if *v == nil {
		return 0
	}
	if **v < lo || **v > hi {
		*v = nil
		return 1
	}
	return 0
}
