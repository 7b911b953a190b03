// Package pipeline connects ingestion, the analysis engine, report
// sinks, and the optional history store into one run path.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/drivesight/drivesight/internal/engine"
	"github.com/drivesight/drivesight/internal/ingest"
	"github.com/drivesight/drivesight/internal/model"
	"github.com/drivesight/drivesight/internal/report"
	"github.com/drivesight/drivesight/internal/store"
)

// Pipeline runs drive-test files through the engine and delivers the
// results.
type Pipeline struct {
	engine *engine.Engine
	sink   report.Sink
	store  *store.Store // nil disables persistence
}

// New creates a Pipeline. store may be nil when history is not wanted.
func New(eng *engine.Engine, sink report.Sink, st *store.Store) *Pipeline {
	return &Pipeline{engine: eng, sink: sink, store: st}
}

// RunFile ingests, analyzes, reports, and optionally persists one file.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*model.Run, error) {
	tbl, err := ingest.File(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return p.RunTable(ctx, tbl)
}

// RunTable analyzes an already materialized table.
func (p *Pipeline) RunTable(ctx context.Context, tbl *model.Table) (*model.Run, error) {
	run := p.engine.Run(tbl)

	if err := p.sink.Write(ctx, run); err != nil {
		return nil, fmt.Errorf("pipeline: report: %w", err)
	}
	if p.store != nil {
		id, err := p.store.SaveRun(ctx, run)
		if err != nil {
			return nil, fmt.Errorf("pipeline: persist: %w", err)
		}
		slog.Info("run stored", "id", id, "source", run.Source)
	}
	return run, nil
}

// Close shuts down the sink.
func (p *Pipeline) Close() error {
	return p.sink.Close()
}
