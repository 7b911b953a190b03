// Package report renders analysis runs for people and machines: a text
// report, a JSON export, and the findings CSV. Destinations implement
// Sink, mirroring how results fan out to the console and files.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/drivesight/drivesight/internal/model"
)

// Verbosity controls how much of a run the text renderer includes.
type Verbosity int

const (
	// Minimal renders KPIs and findings only.
	Minimal Verbosity = iota
	// Standard adds cause counts and problem areas.
	Standard
	// Full adds the reconstructed event list.
	Full
)

// ParseVerbosity maps a flag value to a Verbosity. Unknown strings get
// Standard.
func ParseVerbosity(s string) Verbosity {
	switch s {
	case "minimal":
		return Minimal
	case "full":
		return Full
	default:
		return Standard
	}
}

// Renderer writes one run to w in a single format.
type Renderer interface {
	Render(w io.Writer, run *model.Run) error
}

// New returns the renderer for a format name: "text", "json" or "csv"
// (findings export).
func New(format string, verbosity Verbosity) (Renderer, error) {
	switch format {
	case "text", "":
		return &Text{Verbosity: verbosity}, nil
	case "json":
		return &JSON{Pretty: true}, nil
	case "csv":
		return &CSV{}, nil
	default:
		return nil, fmt.Errorf("report: unknown format %q", format)
	}
}

// Sink is a destination for rendered runs.
type Sink interface {
	Write(ctx context.Context, run *model.Run) error
	Close() error
}
