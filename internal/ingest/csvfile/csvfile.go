package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/drivesight/drivesight/internal/ingest"
	"github.com/drivesight/drivesight/internal/model"
)

func init() {
	ingest.Register("csv", func() ingest.Reader {
		return &Reader{}
	})
}

// Reader parses comma-separated drive-test exports. Columns are matched
// by header alias; unrecognized columns are ignored.
type Reader struct{}

func (r *Reader) Read(ctx context.Context, path string) (*model.Table, error) {
	f, err := ingest.OpenText(path)
	if err != nil {
		return nil, fmt.Errorf("csv reader: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv reader: %s: %w", path, model.ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("csv reader: header: %w", err)
	}

	cols := make(map[int]ingest.Field, len(header))
	tsCol := -1
	for i, name := range header {
		field, ok := ingest.CanonicalField(name)
		if !ok {
			continue
		}
		if field == ingest.FieldTimestamp {
			tsCol = i
			continue
		}
		cols[i] = field
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("csv reader: %s: %w: timestamp", path, model.ErrMissingColumn)
	}

	table := &model.Table{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			table.Anomalies++
			continue
		}
		sample, ok := toSample(record, tsCol, cols, &table.Anomalies)
		if !ok {
			table.Anomalies++
			continue
		}
		table.Samples = append(table.Samples, sample)
	}
	return table, nil
}

// toSample builds a sample from one record. Rows without a parseable
// timestamp are unusable; malformed optional fields stay missing.
func toSample(record []string, tsCol int, cols map[int]ingest.Field, anomalies *int) (model.Sample, bool) {
	if tsCol >= len(record) {
		return model.Sample{}, false
	}
	ts, err := ingest.ParseTimestamp(record[tsCol])
	if err != nil {
		return model.Sample{}, false
	}

	s := model.Sample{Timestamp: ts}
	for i, field := range cols {
		if i >= len(record) {
			continue
		}
		if err := field.Set(&s, record[i]); err != nil {
			*anomalies++
		}
	}
	return s, true
}
