// Package engine orchestrates the analysis pipelines over one sample
// table: threshold classification, event reconstruction, aggregation,
// spatial clustering, and the root-cause pass over the merged results.
package engine

import (
	"log/slog"
	"sync"

	"github.com/drivesight/drivesight/internal/engine/aggregate"
	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/engine/events"
	"github.com/drivesight/drivesight/internal/engine/rf"
	"github.com/drivesight/drivesight/internal/engine/rootcause"
	"github.com/drivesight/drivesight/internal/model"
)

// Config is the immutable per-run analysis configuration.
type Config struct {
	Thresholds rf.Thresholds
	Cluster    cluster.Config
	Events     events.Config
	Throughput aggregate.Floors
	Cells      []aggregate.CellRef // expected-cell reference, may be empty
	Types      []string            // selected analysis types; empty = all
}

// defaults fills zero-valued knobs so a partially built Config is usable.
func (c Config) defaults() Config {
	if c.Thresholds == (rf.Thresholds{}) {
		c.Thresholds = rf.Thresholds{RSRP: -105, RSRQ: -15, SINR: 5}
	}
	if c.Cluster.RadiusM <= 0 {
		c.Cluster.RadiusM = 100
	}
	if c.Cluster.MinSamples < 1 {
		c.Cluster.MinSamples = 3
	}
	return c
}

// Engine runs analysis pipelines. It holds no per-run state, so one
// Engine serves concurrent runs.
type Engine struct {
	cfg Config
}

// New creates an Engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.defaults()}
}

// selected returns the types to run in canonical order.
func (e *Engine) selected() []string {
	if len(e.cfg.Types) == 0 {
		return model.AllTypes()
	}
	want := make(map[string]bool, len(e.cfg.Types))
	for _, t := range e.cfg.Types {
		want[t] = true
	}
	var out []string
	for _, t := range model.AllTypes() {
		if want[t] {
			out = append(out, t)
		}
	}
	return out
}

// Run executes every selected pipeline over the table and derives the
// root-cause findings. Pipelines are pure functions of the immutable
// table, so they run concurrently; results merge in canonical type
// order regardless of completion order.
func (e *Engine) Run(tbl *model.Table) *model.Run {
	types := e.selected()
	results := make([]*model.Result, len(types))

	var wg sync.WaitGroup
	for i, typ := range types {
		wg.Add(1)
		go func(i int, typ string) {
			defer wg.Done()
			results[i] = e.analyze(typ, tbl)
		}(i, typ)
	}
	wg.Wait()

	run := &model.Run{
		Source:         tbl.Source,
		Format:         tbl.Format,
		Degraded:       tbl.Degraded,
		DegradedReason: tbl.DegradedReason,
		SampleCount:    tbl.Len(),
		Thresholds: model.ThresholdSnapshot{
			RSRP: e.cfg.Thresholds.RSRP,
			RSRQ: e.cfg.Thresholds.RSRQ,
			SINR: e.cfg.Thresholds.SINR,
		},
		Results:  results,
		Findings: rootcause.Evaluate(results),
	}
	run.Start, run.End = tbl.Window()
	summarize(run, tbl)

	slog.Info("analysis complete",
		"source", tbl.Source,
		"samples", tbl.Len(),
		"pipelines", len(results),
		"findings", len(run.Findings))
	return run
}

func (e *Engine) analyze(typ string, tbl *model.Table) *model.Result {
	switch typ {
	case model.TypeCoverage:
		return rf.AnalyzeCoverage(tbl, e.cfg.Thresholds, e.cfg.Cluster)
	case model.TypeInterference:
		return rf.AnalyzeInterference(tbl, e.cfg.Thresholds, e.cfg.Cluster)
	case model.TypeRFMetrics:
		return rf.AnalyzeMetrics(tbl, e.cfg.Thresholds)
	case model.TypeHandover:
		return events.AnalyzeHandovers(tbl, e.cfg.Events, e.cfg.Cluster)
	case model.TypeCallDrops:
		return events.AnalyzeCalls(tbl, e.cfg.Cluster)
	case model.TypeIdleConn:
		return events.AnalyzeRRC(tbl, e.cfg.Cluster)
	case model.TypeThroughput:
		return aggregate.AnalyzeThroughput(tbl, e.cfg.Throughput, e.cfg.Cluster)
	case model.TypeOverload:
		return aggregate.AnalyzeOverload(tbl, e.cfg.Cluster)
	case model.TypeQoS:
		return aggregate.AnalyzeQoS(tbl, e.cfg.Cluster)
	case model.TypeParams:
		return aggregate.AnalyzeParams(tbl, e.cfg.Cells, e.cfg.Cluster)
	default:
		// Selection is validated upstream; an unknown type here is a
		// programming error, reported rather than panicked on.
		r := model.NewResult(typ)
		r.Note = "unknown analysis type"
		return r
	}
}

// summarize computes the dataset-level means recorded with the run.
func summarize(run *model.Run, tbl *model.Table) {
	run.AvgRSRP = meanOf(tbl, func(s *model.Sample) *float64 { return s.RSRP })
	run.AvgRSRQ = meanOf(tbl, func(s *model.Sample) *float64 { return s.RSRQ })
	run.AvgSINR = meanOf(tbl, func(s *model.Sample) *float64 { return s.SINR })
	run.AvgThroughputDL = meanOf(tbl, func(s *model.Sample) *float64 { return s.ThroughputDL })
}

func meanOf(tbl *model.Table, get func(*model.Sample) *float64) *float64 {
	var sum float64
	n := 0
	for i := range tbl.Samples {
		if v := get(&tbl.Samples[i]); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}
