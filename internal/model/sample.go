package model

import (
	"sort"
	"time"
)

// Sample is one row of drive-test telemetry: a timestamped, geotagged
// radio measurement. Optional fields are nil pointers or empty strings,
// never sentinel numbers.
type Sample struct {
	Timestamp     time.Time
	Latitude      *float64 // WGS-84 degrees
	Longitude     *float64
	RSRP          *float64 // dBm
	RSRQ          *float64 // dB
	SINR          *float64 // dB
	ServingCellID string
	PCI           *int
	EARFCN        *int
	ThroughputDL  *float64 // kbps
	ThroughputUL  *float64 // kbps
	CallState     string   // idle, setup, connected, drop, end
	RRCState      string   // idle, connecting, connected
	EventMarker   string   // raw marker token, "" when none
	MOS           *float64 // VoLTE mean opinion score, 1..5
	QCI           *int
}

// HasLocation reports whether both coordinates are present.
func (s *Sample) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// HasRF reports whether all three RF metrics are present. Samples without
// a complete RF triple are excluded from classification denominators.
func (s *Sample) HasRF() bool {
	return s.RSRP != nil && s.RSRQ != nil && s.SINR != nil
}

// GeoPoint is a WGS-84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Table is the in-memory dataset a single analysis run operates on.
// Samples are timestamp-ascending after ingest normalization.
type Table struct {
	Samples        []Sample
	Source         string // originating filename
	Format         string // detected input format (csv, log, trp, ...)
	Degraded       bool   // placeholder data substituted for an undecodable input
	DegradedReason string
	Anomalies      int // rows repaired or dropped during normalization
}

// Len returns the number of samples.
func (t *Table) Len() int { return len(t.Samples) }

// Window returns the first and last sample timestamps. Zero times when
// the table is empty.
func (t *Table) Window() (start, end time.Time) {
	if len(t.Samples) == 0 {
		return time.Time{}, time.Time{}
	}
	return t.Samples[0].Timestamp, t.Samples[len(t.Samples)-1].Timestamp
}

// CellIDs returns the distinct serving cell identifiers, sorted.
func (t *Table) CellIDs() []string {
	seen := make(map[string]struct{})
	for i := range t.Samples {
		if id := t.Samples[i].ServingCellID; id != "" {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Float64 returns a pointer to v. Convenience for building optional fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
