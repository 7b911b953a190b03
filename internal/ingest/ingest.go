package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/drivesight/drivesight/internal/model"
)

// Reader parses one drive-test export format into a sample table.
type Reader interface {
	// Read parses the file at path. Per-record problems are repaired or
	// dropped and counted on the table; only structural problems error.
	Read(ctx context.Context, path string) (*model.Table, error)
}

// DetectFormat returns the format key for a path, derived from its
// extension ("csv", "log", "txt", "trp", ...).
func DetectFormat(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// File ingests the drive-test export at path: format detection, parse,
// normalization. The returned table is timestamp-ordered.
func File(ctx context.Context, path string) (*model.Table, error) {
	name := filepath.Base(path)
	format := DetectFormat(path)

	switch format {
	case "xlsx", "xls":
		return nil, fmt.Errorf("ingest %s: %w: convert spreadsheet exports to CSV first", name, model.ErrUnsupportedFormat)
	}

	ctor, err := Get(format)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}

	table, err := ctor().Read(ctx, path)
	if err != nil {
		return nil, err
	}
	table.Source = name
	table.Format = format

	Normalize(table)

	if table.Len() == 0 {
		return nil, fmt.Errorf("ingest %s: %w", name, model.ErrEmptyInput)
	}
	if table.Anomalies > 0 {
		slog.Debug("ingest repaired records", "file", name, "anomalies", table.Anomalies)
	}
	slog.Info("ingest complete", "file", name, "format", format, "samples", table.Len(), "degraded", table.Degraded)
	return table, nil
}
