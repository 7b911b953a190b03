package drivesight

import (
	"time"

	"github.com/drivesight/drivesight/internal/model"
)

// Sample is one telemetry record. Optional fields are nil pointers or
// empty strings, never placeholder numbers.
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
	CallState     string
	RRCState      string
	EventMarker   string
	MOS           *float64
	QCI           *int
}

// ProblemArea is a geographic cluster of degraded samples.
type ProblemArea struct {
	Type        string
	CenterLat   float64
	CenterLon   float64
	RadiusM     float64
	SampleCount int
	CellID      string
	AvgRSRP     *float64
	AvgRSRQ     *float64
	AvgSINR     *float64
	Severity    string
	Description string
}

// Event is one reconstructed network procedure: a handover attempt, a
// voice call, or an RRC connection transition.
type Event struct {
	Kind       string
	Start      time.Time
	End        time.Time // zero when unterminated
	Outcome    string
	Cause      string
	SourceCell string
	TargetCell string
}

// Result is the outcome of one analysis type.
type Result struct {
	Type   string
	KPIs   map[string]float64
	Counts map[string]int
	Areas  []ProblemArea
	Events []Event
	Note   string
}

// Finding is a root-cause diagnosis with a recommendation.
type Finding struct {
	Issue          string
	Severity       string
	Description    string
	Recommendation string
}

// Run is the complete output of one analysis.
type Run struct {
	Source      string
	SampleCount int
	Degraded    bool
	Results     []Result
	Findings    []Finding
}

// Types returns the closed analysis-type vocabulary in canonical order.
func Types() []string {
	return model.AllTypes()
}

// Float64 returns a pointer to v. Convenience for optional fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func toModel(samples []Sample) *model.Table {
	tbl := &model.Table{Source: "in-memory", Format: "api"}
	tbl.Samples = make([]model.Sample, len(samples))
	for i, s := range samples {
		tbl.Samples[i] = model.Sample{
			Timestamp:     s.Timestamp,
			Latitude:      s.Latitude,
			Longitude:     s.Longitude,
			RSRP:          s.RSRP,
			RSRQ:          s.RSRQ,
			SINR:          s.SINR,
			ServingCellID: s.ServingCellID,
			PCI:           s.PCI,
			EARFCN:        s.EARFCN,
			ThroughputDL:  s.ThroughputDL,
			ThroughputUL:  s.ThroughputUL,
			CallState:     s.CallState,
			RRCState:      s.RRCState,
			EventMarker:   s.EventMarker,
			MOS:           s.MOS,
			QCI:           s.QCI,
		}
	}
	return tbl
}

func fromModel(run *model.Run) *Run {
	out := &Run{
		Source:      run.Source,
		SampleCount: run.SampleCount,
		Degraded:    run.Degraded,
	}
	for _, r := range run.Results {
		res := Result{
			Type:   r.Type,
			KPIs:   r.KPIs,
			Counts: r.Counts,
			Note:   r.Note,
		}
		for _, a := range r.Areas {
			res.Areas = append(res.Areas, ProblemArea{
				Type:        a.Type,
				CenterLat:   a.CenterLat,
				CenterLon:   a.CenterLon,
				RadiusM:     a.RadiusM,
				SampleCount: a.SampleCount,
				CellID:      a.CellID,
				AvgRSRP:     a.AvgRSRP,
				AvgRSRQ:     a.AvgRSRQ,
				AvgSINR:     a.AvgSINR,
				Severity:    a.Severity,
				Description: a.Description,
			})
		}
		for _, ev := range r.Events {
			res.Events = append(res.Events, Event{
				Kind:       string(ev.Kind),
				Start:      ev.Start,
				End:        ev.End,
				Outcome:    string(ev.Outcome),
				Cause:      ev.Cause,
				SourceCell: ev.SourceCell,
				TargetCell: ev.TargetCell,
			})
		}
		out.Results = append(out.Results, res)
	}
	for _, f := range run.Findings {
		out.Findings = append(out.Findings, Finding(f))
	}
	return out
}
