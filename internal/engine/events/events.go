// Package events reconstructs discrete network procedures (handovers,
// voice calls, RRC transitions) from marker tokens on the time-ordered
// sample stream. Each reconstructor is a single-pass state machine:
// duplicate opens are idempotent, orphan closes are counted and skipped,
// and procedures still open at end of input are emitted with an Unknown
// outcome.
package events

import (
	"strings"

	"github.com/drivesight/drivesight/internal/model"
)

// Marker vocabulary recognized by the reconstructors.
const (
	MarkerHOStart   = "HO_START"
	MarkerHOSuccess = "HO_SUCCESS"
	MarkerHOFailure = "HO_FAILURE"

	MarkerCallSetup     = "CALL_SETUP"
	MarkerCallConnected = "CALL_CONNECTED"
	MarkerCallEnd       = "CALL_END"
	MarkerCallDrop      = "CALL_DROP"

	MarkerRRCConnReq   = "RRC_CONN_REQ"
	MarkerRRCConnSetup = "RRC_CONN_SETUP"
	MarkerRRCConnFail  = "RRC_CONN_FAIL"
	MarkerRRCRelease   = "RRC_RELEASE"
)

var vocabulary = map[string]struct{}{
	MarkerHOStart: {}, MarkerHOSuccess: {}, MarkerHOFailure: {},
	MarkerCallSetup: {}, MarkerCallConnected: {}, MarkerCallEnd: {}, MarkerCallDrop: {},
	MarkerRRCConnReq: {}, MarkerRRCConnSetup: {}, MarkerRRCConnFail: {}, MarkerRRCRelease: {},
}

// Known reports whether the marker belongs to the closed vocabulary.
func Known(marker string) bool {
	_, ok := vocabulary[marker]
	return ok
}

// unknownIn reports whether the marker claims the given family prefix
// without being part of the vocabulary. Tokens outside every family are
// not transition markers and are ignored entirely.
func unknownIn(marker, family string) bool {
	return marker != "" && strings.HasPrefix(marker, family) && !Known(marker)
}

// Config tunes event reconstruction.
type Config struct {
	// StabilityWindow is how many consecutive samples on the target
	// cell confirm an unmarked handover as successful. Zero means the
	// default.
	StabilityWindow int
}

// DefaultStabilityWindow confirms a cell change after three stable
// samples when no explicit outcome marker arrives.
const DefaultStabilityWindow = 3

func (c Config) window() int {
	if c.StabilityWindow <= 0 {
		return DefaultStabilityWindow
	}
	return c.StabilityWindow
}

// markerAnomalies tracks the per-scan bookkeeping shared by all
// reconstructors.
type markerAnomalies struct {
	duplicates int // open markers while already open
	orphans    int // close markers with nothing open
	unknown    int // unrecognized markers in this family
}

// recordAnomalies writes the nonzero anomaly tallies as KPIs.
func (a markerAnomalies) record(r *model.Result) {
	if a.duplicates > 0 {
		r.KPIs["duplicate_markers"] = float64(a.duplicates)
	}
	if a.orphans > 0 {
		r.KPIs["orphan_markers"] = float64(a.orphans)
	}
	if a.unknown > 0 {
		r.KPIs["unknown_markers"] = float64(a.unknown)
	}
}

func geoOf(s *model.Sample) *model.GeoPoint {
	if !s.HasLocation() {
		return nil
	}
	return &model.GeoPoint{Lat: *s.Latitude, Lon: *s.Longitude}
}

const noteNoSamples = "no samples in input; nothing to analyze"

// pct returns part over total as a percentage, 0 when total is 0.
func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
