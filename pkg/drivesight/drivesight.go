package drivesight

import (
	"context"
	"fmt"
	"sort"

	"github.com/drivesight/drivesight/internal/config"
	"github.com/drivesight/drivesight/internal/engine"
	"github.com/drivesight/drivesight/internal/engine/aggregate"
	"github.com/drivesight/drivesight/internal/ingest"
	"github.com/drivesight/drivesight/internal/model"

	// Register format readers so AnalyzeFile handles every supported
	// export out of the box.
	_ "github.com/drivesight/drivesight/internal/ingest/csvfile"
	_ "github.com/drivesight/drivesight/internal/ingest/logfile"
	_ "github.com/drivesight/drivesight/internal/ingest/trp"
)

// Analyzer runs drive-test analyses. Create one with New and reuse it;
// it holds no per-run state.
type Analyzer struct {
	engine *engine.Engine
}

// New creates an Analyzer, validating the configured thresholds and
// analysis selection.
func New(opts ...Option) (*Analyzer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.rsrp < config.MinRSRP || o.rsrp > config.MaxRSRP {
		return nil, fmt.Errorf("drivesight: rsrp threshold %.1f outside %g..%g", o.rsrp, config.MinRSRP, config.MaxRSRP)
	}
	if o.rsrq < config.MinRSRQ || o.rsrq > config.MaxRSRQ {
		return nil, fmt.Errorf("drivesight: rsrq threshold %.1f outside %g..%g", o.rsrq, config.MinRSRQ, config.MaxRSRQ)
	}
	if o.sinr < config.MinSINR || o.sinr > config.MaxSINR {
		return nil, fmt.Errorf("drivesight: sinr threshold %.1f outside %g..%g", o.sinr, config.MinSINR, config.MaxSINR)
	}
	for _, t := range o.types {
		if !model.ValidType(t) {
			return nil, fmt.Errorf("drivesight: unknown analysis type %q", t)
		}
	}
	if o.radiusM <= 0 || o.minSamples < 1 {
		return nil, fmt.Errorf("drivesight: invalid clustering parameters")
	}

	cfg := engine.Config{Types: o.types}
	cfg.Thresholds.RSRP = o.rsrp
	cfg.Thresholds.RSRQ = o.rsrq
	cfg.Thresholds.SINR = o.sinr
	cfg.Cluster.RadiusM = o.radiusM
	cfg.Cluster.MinSamples = o.minSamples
	cfg.Events.StabilityWindow = o.handoverWindow
	for _, c := range o.cells {
		cfg.Cells = append(cfg.Cells, aggregate.CellRef{CellID: c.cellID, PCI: c.pci, EARFCN: c.earfcn})
	}
	return &Analyzer{engine: engine.New(cfg)}, nil
}

// AnalyzeFile ingests and analyzes a drive-test export. Supported
// formats: CSV, key=value LOG/TXT, and vendor TRP containers via the
// degraded placeholder path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Run, error) {
	tbl, err := ingest.File(ctx, path)
	if err != nil {
		return nil, err
	}
	return fromModel(a.engine.Run(tbl)), nil
}

// AnalyzeTable analyzes already-materialized samples. The samples are
// ordered by timestamp before analysis; missing optional fields stay
// excluded from the relevant denominators.
func (a *Analyzer) AnalyzeTable(samples []Sample) *Run {
	tbl := toModel(samples)
	sort.SliceStable(tbl.Samples, func(i, j int) bool {
		return tbl.Samples[i].Timestamp.Before(tbl.Samples[j].Timestamp)
	})
	return fromModel(a.engine.Run(tbl))
}
