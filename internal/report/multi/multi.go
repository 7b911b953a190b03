// Package multi fans rendered runs out to multiple sinks.
package multi

import (
	"context"
	"errors"

	"github.com/drivesight/drivesight/internal/model"
	"github.com/drivesight/drivesight/internal/report"
)

// Sink delivers each run to every wrapped sink sequentially. A failing
// sink does not prevent delivery to the rest.
type Sink struct {
	sinks []report.Sink
}

// New creates a Sink fanning out to the given sinks.
func New(sinks ...report.Sink) *Sink {
	return &Sink{sinks: sinks}
}

func (m *Sink) Write(ctx context.Context, run *model.Run) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Sink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
