// Package testdata builds synthetic drive-test tables for engine tests.
package testdata

import (
	"time"

	"github.com/drivesight/drivesight/internal/model"
)

// Base is the fixed start time of synthetic drives.
var Base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Default location of synthetic samples (lower Manhattan).
const (
	OriginLat = 40.7128
	OriginLon = -74.0060
)

// Opt mutates a sample under construction.
type Opt func(*model.Sample)

// S builds one sample offset seconds after Base. The default sample has
// good RF on cell-1 at the origin location; opts override.
func S(offsetSec int, opts ...Opt) model.Sample {
	s := model.Sample{
		Timestamp:     Base.Add(time.Duration(offsetSec) * time.Second),
		Latitude:      model.Float64(OriginLat),
		Longitude:     model.Float64(OriginLon),
		RSRP:          model.Float64(-95),
		RSRQ:          model.Float64(-10),
		SINR:          model.Float64(15),
		ServingCellID: "cell-1",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// RF sets the full metric triple.
func RF(rsrp, rsrq, sinr float64) Opt {
	return func(s *model.Sample) {
		s.RSRP = model.Float64(rsrp)
		s.RSRQ = model.Float64(rsrq)
		s.SINR = model.Float64(sinr)
	}
}

// NoRF clears the metric triple.
func NoRF() Opt {
	return func(s *model.Sample) {
		s.RSRP, s.RSRQ, s.SINR = nil, nil, nil
	}
}

// At places the sample at the given coordinates.
func At(lat, lon float64) Opt {
	return func(s *model.Sample) {
		s.Latitude = model.Float64(lat)
		s.Longitude = model.Float64(lon)
	}
}

// OffsetM places the sample the given meters east and north of the
// origin. One latitude degree is ~111,320 m; one longitude degree at the
// origin latitude is ~84,400 m.
func OffsetM(eastM, northM float64) Opt {
	return At(OriginLat+northM/111320, OriginLon+eastM/84400)
}

// NoLocation clears the coordinates.
func NoLocation() Opt {
	return func(s *model.Sample) {
		s.Latitude, s.Longitude = nil, nil
	}
}

// Cell sets the serving cell.
func Cell(id string) Opt {
	return func(s *model.Sample) { s.ServingCellID = id }
}

// Phy sets the physical-layer identifiers.
func Phy(pci, earfcn int) Opt {
	return func(s *model.Sample) {
		s.PCI = model.Int(pci)
		s.EARFCN = model.Int(earfcn)
	}
}

// Marker sets the event marker token.
func Marker(m string) Opt {
	return func(s *model.Sample) { s.EventMarker = m }
}

// Throughput sets DL and UL throughput in kbps.
func Throughput(dlKbps, ulKbps float64) Opt {
	return func(s *model.Sample) {
		s.ThroughputDL = model.Float64(dlKbps)
		s.ThroughputUL = model.Float64(ulKbps)
	}
}

// NoThroughput clears both throughput fields.
func NoThroughput() Opt {
	return func(s *model.Sample) {
		s.ThroughputDL, s.ThroughputUL = nil, nil
	}
}

// Call sets the call state.
func Call(state string) Opt {
	return func(s *model.Sample) { s.CallState = state }
}

// RRC sets the RRC state.
func RRC(state string) Opt {
	return func(s *model.Sample) { s.RRCState = state }
}

// MOS sets the voice quality score.
func MOS(v float64) Opt {
	return func(s *model.Sample) { s.MOS = model.Float64(v) }
}

// QCI sets the QoS class identifier.
func QCI(v int) Opt {
	return func(s *model.Sample) { s.QCI = model.Int(v) }
}

// Table wraps samples in a table. Samples must already be in timestamp
// order, as they are after ingest.
func Table(samples ...model.Sample) *model.Table {
	return &model.Table{Samples: samples, Source: "synthetic", Format: "test"}
}

// Drive generates an n-sample table, one sample per second, each built
// by the callback.
func Drive(n int, build func(i int) model.Sample) *model.Table {
	samples := make([]model.Sample, n)
	for i := range samples {
		samples[i] = build(i)
	}
	return Table(samples...)
}
