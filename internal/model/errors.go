package model

import "errors"

// Structural errors surfaced to callers. Per-record problems never map to
// these; they are repaired or dropped and counted as table anomalies.
var (
	ErrEmptyInput        = errors.New("empty input")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingColumn     = errors.New("required column missing")
	ErrMalformedRecord   = errors.New("malformed record")
)
