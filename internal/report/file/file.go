// Package file writes rendered runs to a file on disk.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/drivesight/drivesight/internal/model"
	"github.com/drivesight/drivesight/internal/report"
)

// Sink renders each run to a file, replacing previous contents.
type Sink struct {
	path string
	r    report.Renderer
}

// New creates a file Sink writing to path with the given renderer.
func New(path string, r report.Renderer) *Sink {
	return &Sink{path: path, r: r}
}

func (s *Sink) Write(_ context.Context, run *model.Run) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("file output: %w", err)
	}
	if err := s.r.Render(f, run); err != nil {
		f.Close()
		return fmt.Errorf("file output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file output: %w", err)
	}
	return nil
}

func (s *Sink) Close() error { return nil }
