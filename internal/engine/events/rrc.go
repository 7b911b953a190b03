package events

import (
	"fmt"
	"log/slog"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// rrcScan reconstructs RRC connection attempts: RRC_CONN_REQ opens an
// attempt, RRC_CONN_SETUP closes it Success and RRC_CONN_FAIL closes it
// Failure. RRC_RELEASE ends a connected period and is tallied on its
// own; it never resolves an attempt.
type rrcScan struct {
	open *model.Event

	releases int

	events    []model.Event
	failCands []cluster.Candidate
	causes    map[string]int
	anomalies markerAnomalies
}

func (r *rrcScan) step(s *model.Sample) {
	switch marker := s.EventMarker; {
	case marker == MarkerRRCConnReq:
		if r.open != nil {
			r.anomalies.duplicates++
			return
		}
		r.open = &model.Event{
			Kind:       model.EventRRC,
			Start:      s.Timestamp,
			SourceCell: s.ServingCellID,
			At:         geoOf(s),
		}
	case marker == MarkerRRCConnSetup:
		if r.open == nil {
			r.anomalies.orphans++
			return
		}
		ev := r.open
		ev.End = s.Timestamp
		ev.Outcome = model.OutcomeSuccess
		r.events = append(r.events, *ev)
		r.open = nil
	case marker == MarkerRRCConnFail:
		if r.open == nil {
			r.anomalies.orphans++
			return
		}
		ev := r.open
		ev.End = s.Timestamp
		ev.Outcome = model.OutcomeFailure
		ev.Cause = classifyCause(dropCauses, contextAt(s, true))
		r.causes[ev.Cause]++
		if cand, ok := cluster.FromSample(s); ok {
			r.failCands = append(r.failCands, cand)
		}
		r.events = append(r.events, *ev)
		r.open = nil
	case marker == MarkerRRCRelease:
		r.releases++
	case unknownIn(marker, "RRC_"):
		r.anomalies.unknown++
		slog.Debug("unrecognized rrc marker", "marker", marker)
	}
}

func (r *rrcScan) finish() {
	if r.open == nil {
		return
	}
	ev := r.open
	ev.Outcome = model.OutcomeUnknown
	r.events = append(r.events, *ev)
	r.open = nil
}

// AnalyzeRRC reconstructs RRC connection attempts and reports the
// idle/connected-mode failure KPIs and failure problem areas.
func AnalyzeRRC(tbl *model.Table, cl cluster.Config) *model.Result {
	res := model.NewResult(model.TypeIdleConn)
	if tbl.Len() == 0 {
		res.Note = noteNoSamples
		return res
	}
	r := &rrcScan{causes: make(map[string]int)}
	for i := range tbl.Samples {
		r.step(&tbl.Samples[i])
	}
	r.finish()

	var ok, failed, unresolved int
	for _, ev := range r.events {
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
	res.KPIs["total_rrc_attempts"] = float64(total)
	res.KPIs["successful_rrc"] = float64(ok)
	res.KPIs["failed_rrc"] = float64(failed)
	res.KPIs["rrc_success_rate"] = pct(ok, total)
	res.KPIs["rrc_releases"] = float64(r.releases)
	if unresolved > 0 {
		res.KPIs["unresolved_rrc"] = float64(unresolved)
	}
	r.anomalies.record(res)
	for cause, n := range r.causes {
		res.Counts[cause] = n
	}
	res.Events = r.events
	res.Areas = cluster.Areas(model.TypeIdleConn, r.failCands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("%d RRC connection failures in this area", c.Count)
		})
	if total == 0 {
		res.Note = "no RRC connection attempts observed"
	}
	return res
}
