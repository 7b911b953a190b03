// Package stdout writes rendered runs to standard output.
package stdout

import (
	"context"
	"io"
	"os"

	"github.com/drivesight/drivesight/internal/model"
	"github.com/drivesight/drivesight/internal/report"
)

// Sink renders runs to stdout.
type Sink struct {
	w io.Writer
	r report.Renderer
}

// New creates a stdout Sink using the given renderer.
func New(r report.Renderer) *Sink {
	return &Sink{w: os.Stdout, r: r}
}

func (s *Sink) Write(_ context.Context, run *model.Run) error {
	return s.r.Render(s.w, run)
}

func (s *Sink) Close() error { return nil }
