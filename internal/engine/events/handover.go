package events

import (
	"fmt"
	"log/slog"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// handoverScan reconstructs handover attempts from explicit markers and
// from unmarked serving-cell changes. An unmarked change confirms as
// Success after `window` consecutive samples on the new cell; reverting
// to the source cell (or an explicit failure marker) before that closes
// the attempt as Failure.
type handoverScan struct {
	window int

	open   *model.Event
	target string // new cell observed while open, "" until seen
	stable int    // consecutive samples on target

	prevCell   string // last non-empty serving cell before this sample
	prevSample *model.Sample

	events    []model.Event
	failCands []cluster.Candidate
	causes    map[string]int
	anomalies markerAnomalies
}

func (h *handoverScan) step(s *model.Sample) {
	switch marker := s.EventMarker; {
	case marker == MarkerHOStart:
		if h.open != nil {
			h.anomalies.duplicates++
		} else {
			source := s.ServingCellID
			if source == "" {
				source = h.prevCell
			}
			h.open = &model.Event{
				Kind:       model.EventHandover,
				Start:      s.Timestamp,
				SourceCell: source,
				At:         geoOf(s),
			}
		}
	case marker == MarkerHOSuccess:
		if h.open == nil {
			h.anomalies.orphans++
		} else {
			h.closeSuccess(s)
		}
	case marker == MarkerHOFailure:
		if h.open == nil {
			h.anomalies.orphans++
		} else {
			h.closeFailure(s)
		}
	case unknownIn(marker, "HO_"):
		h.anomalies.unknown++
		slog.Debug("unrecognized handover marker", "marker", marker)
	default:
		h.trackCell(s)
	}

	if s.ServingCellID != "" {
		h.prevCell = s.ServingCellID
	}
	h.prevSample = s
}

// trackCell advances the state machine on an unmarked sample.
func (h *handoverScan) trackCell(s *model.Sample) {
	cell := s.ServingCellID
	if cell == "" {
		return
	}
	if h.open == nil {
		if h.prevCell != "" && cell != h.prevCell {
			h.openImplicit(s, cell)
		}
		return
	}
	switch {
	case h.target == "":
		// Explicit HO_START, waiting for the cell to move.
		if cell != h.open.SourceCell {
			h.target = cell
			h.stable = 1
			h.maybeConfirm(s)
		}
	case cell == h.target:
		h.stable++
		h.maybeConfirm(s)
	case cell == h.open.SourceCell:
		// Reverted to the source before stabilizing.
		h.closeFailure(s)
	default:
		// Moved to a third cell before stabilizing: the attempt failed
		// and a new unmarked attempt begins here.
		h.closeFailure(s)
		h.openImplicit(s, cell)
	}
}

// openImplicit starts an attempt detected from a cell change. The
// attempt began at the sample preceding the change.
func (h *handoverScan) openImplicit(s *model.Sample, target string) {
	start := s.Timestamp
	var at *model.GeoPoint
	if h.prevSample != nil {
		start = h.prevSample.Timestamp
		at = geoOf(h.prevSample)
	}
	h.open = &model.Event{
		Kind:       model.EventHandover,
		Start:      start,
		SourceCell: h.prevCell,
		At:         at,
	}
	h.target = target
	h.stable = 1
	h.maybeConfirm(s)
}

func (h *handoverScan) maybeConfirm(s *model.Sample) {
	if h.stable >= h.window {
		h.closeSuccess(s)
	}
}

func (h *handoverScan) closeSuccess(s *model.Sample) {
	ev := h.open
	ev.End = s.Timestamp
	ev.Outcome = model.OutcomeSuccess
	ev.TargetCell = h.target
	if ev.TargetCell == "" && s.ServingCellID != "" && s.ServingCellID != ev.SourceCell {
		ev.TargetCell = s.ServingCellID
	}
	h.events = append(h.events, *ev)
	h.reset()
}

func (h *handoverScan) closeFailure(s *model.Sample) {
	ev := h.open
	ev.End = s.Timestamp
	ev.Outcome = model.OutcomeFailure
	ev.TargetCell = h.target
	ev.Cause = classifyCause(handoverCauses, contextAt(s, h.target != ""))
	h.causes[ev.Cause]++
	if c, ok := cluster.FromSample(s); ok {
		h.failCands = append(h.failCands, c)
	}
	h.events = append(h.events, *ev)
	h.reset()
}

// finish emits any attempt still open at end of input with an Unknown
// outcome; it never joins the success/failure totals.
func (h *handoverScan) finish() {
	if h.open == nil {
		return
	}
	ev := h.open
	ev.Outcome = model.OutcomeUnknown
	ev.TargetCell = h.target
	h.events = append(h.events, *ev)
	h.reset()
}

func (h *handoverScan) reset() {
	h.open = nil
	h.target = ""
	h.stable = 0
}

// AnalyzeHandovers reconstructs handover attempts and reports the
// success-rate KPIs, failure causes, and failure problem areas.
func AnalyzeHandovers(tbl *model.Table, cfg Config, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeHandover)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}
	h := &handoverScan{window: cfg.window(), causes: make(map[string]int)}
	for i := range tbl.Samples {
		h.step(&tbl.Samples[i])
	}
	h.finish()

	var ok, failed, unresolved int
	for _, ev := range h.events {
		switch ev.Outcome {
		case model.OutcomeSuccess:
			ok++
		case model.OutcomeFailure:
			failed++
		default:
			unresolved++
		}
	}
	total := ok + failed
	r.KPIs["total_handovers"] = float64(total)
	r.KPIs["successful_handovers"] = float64(ok)
	r.KPIs["failed_handovers"] = float64(failed)
	r.KPIs["handover_success_rate"] = pct(ok, total)
	if unresolved > 0 {
		r.KPIs["unresolved_handovers"] = float64(unresolved)
	}
	h.anomalies.record(r)
	for cause, n := range h.causes {
		r.Counts[cause] = n
	}
	r.Events = h.events
	r.Areas = cluster.Areas(model.TypeHandover, h.failCands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("%d handover failures in this area", c.Count)
		})
	if total == 0 {
		r.Note = "no handover attempts observed"
	}
	return r
}
