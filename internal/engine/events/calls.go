package events

import (
	"fmt"
	"log/slog"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// callScan reconstructs voice call sessions. A session opens on
// CALL_SETUP, closes Completed on CALL_END and Drop on CALL_DROP. When
// the export carries no markers, the call_state field edges substitute:
// idle→setup/connected opens, →end/drop closes.
type callScan struct {
	open      *model.Event
	connected bool // CALL_CONNECTED seen for the open session

	prevState string

	events    []model.Event
	dropCands []cluster.Candidate
	causes    map[string]int
	anomalies markerAnomalies
}

func (c *callScan) step(s *model.Sample) {
	switch marker := s.EventMarker; {
	case marker == MarkerCallSetup:
		c.openAt(s, true)
	case marker == MarkerCallConnected:
		if c.open == nil {
			c.anomalies.orphans++
		} else {
			c.connected = true
		}
	case marker == MarkerCallEnd:
		if c.open == nil {
			c.anomalies.orphans++
		} else {
			c.closeCompleted(s)
		}
	case marker == MarkerCallDrop:
		if c.open == nil {
			c.anomalies.orphans++
		} else {
			c.closeDrop(s)
		}
	case unknownIn(marker, "CALL_"):
		c.anomalies.unknown++
		slog.Debug("unrecognized call marker", "marker", marker)
	default:
		c.trackState(s)
	}
	if s.CallState != "" {
		c.prevState = s.CallState
	}
}

// trackState advances the session on call_state edges when no marker is
// present on the sample.
func (c *callScan) trackState(s *model.Sample) {
	state := s.CallState
	if state == "" || state == c.prevState {
		return
	}
	switch state {
	case "setup", "connected":
		if c.open == nil {
			c.openAt(s, false)
		}
		if state == "connected" {
			c.connected = true
		}
	case "end":
		if c.open != nil {
			c.closeCompleted(s)
		}
	case "drop":
		if c.open != nil {
			c.closeDrop(s)
		}
	}
}

func (c *callScan) openAt(s *model.Sample, marked bool) {
	if c.open != nil {
		if marked {
			c.anomalies.duplicates++
		}
		return
	}
	c.open = &model.Event{
		Kind:       model.EventCall,
		Start:      s.Timestamp,
		SourceCell: s.ServingCellID,
		At:         geoOf(s),
	}
	c.connected = false
}

func (c *callScan) closeCompleted(s *model.Sample) {
	ev := c.open
	ev.End = s.Timestamp
	ev.Outcome = model.OutcomeCompleted
	c.events = append(c.events, *ev)
	c.open = nil
}

func (c *callScan) closeDrop(s *model.Sample) {
	ev := c.open
	ev.End = s.Timestamp
	ev.Outcome = model.OutcomeDrop
	ev.Cause = classifyCause(dropCauses, contextAt(s, true))
	c.causes[ev.Cause]++
	if cand, ok := cluster.FromSample(s); ok {
		c.dropCands = append(c.dropCands, cand)
	}
	c.events = append(c.events, *ev)
	c.open = nil
}

// finish emits a session still open at end of input with an Unknown
// outcome, excluded from the completed/dropped totals.
func (c *callScan) finish() {
	if c.open == nil {
		return
	}
	ev := c.open
	ev.Outcome = model.OutcomeUnknown
	c.events = append(c.events, *ev)
	c.open = nil
}

// AnalyzeCalls reconstructs call sessions and reports the drop-rate
// KPIs, drop causes, and drop problem areas.
func AnalyzeCalls(tbl *model.Table, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeCallDrops)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}
	c := &callScan{causes: make(map[string]int)}
	for i := range tbl.Samples {
		c.step(&tbl.Samples[i])
	}
	c.finish()

	var completed, dropped, unresolved int
	for _, ev := range c.events {
		switch ev.Outcome {
		case model.OutcomeCompleted:
			completed++
		case model.OutcomeDrop:
			dropped++
		default:
			unresolved++
		}
	}
	total := completed + dropped
	r.KPIs["total_calls"] = float64(total)
	r.KPIs["completed_calls"] = float64(completed)
	r.KPIs["dropped_calls"] = float64(dropped)
	r.KPIs["call_drop_rate"] = pct(dropped, total)
	if unresolved > 0 {
		r.KPIs["unresolved_calls"] = float64(unresolved)
	}
	c.anomalies.record(r)
	for cause, n := range c.causes {
		r.Counts[cause] = n
	}
	r.Events = c.events
	r.Areas = cluster.Areas(model.TypeCallDrops, c.dropCands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("%d dropped calls in this area", c.Count)
		})
	if total == 0 {
		r.Note = "no call sessions observed"
	}
	return r
}
