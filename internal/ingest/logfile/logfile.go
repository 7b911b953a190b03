package logfile

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/drivesight/drivesight/internal/ingest"
	"github.com/drivesight/drivesight/internal/model"
)

func init() {
	ctor := func() ingest.Reader { return &Reader{} }
	ingest.Register("log", ctor)
	ingest.Register("txt", ctor)
}

// Reader parses line-oriented key=value exports:
//
//	2024-03-01 10:00:00.125 rsrp=-101.2 sinr=3.2 cell_id=310-410-23 event=HO_START
//
// The leading tokens up to the first key=value pair form the timestamp.
// Unknown keys are ignored; blank lines and #-comments are skipped.
type Reader struct{}

func (r *Reader) Read(ctx context.Context, path string) (*model.Table, error) {
	f, err := ingest.OpenText(path)
	if err != nil {
		return nil, fmt.Errorf("log reader: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	table := &model.Table{}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sample, ok := parseLine(line, &table.Anomalies)
		if !ok {
			table.Anomalies++
			continue
		}
		table.Samples = append(table.Samples, sample)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("log reader: scan %s: %w", path, err)
	}
	return table, nil
}

func parseLine(line string, anomalies *int) (model.Sample, bool) {
	fields := strings.Fields(line)
	kvStart := -1
	for i, tok := range fields {
		if strings.ContainsRune(tok, '=') {
			kvStart = i
			break
		}
	}
	if kvStart <= 0 {
		return model.Sample{}, false
	}

	ts, err := ingest.ParseTimestamp(strings.Join(fields[:kvStart], " "))
	if err != nil {
		return model.Sample{}, false
	}

	s := model.Sample{Timestamp: ts}
	for _, tok := range fields[kvStart:] {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		field, known := ingest.CanonicalField(key)
		if !known || field == ingest.FieldTimestamp {
			continue
		}
		if err := field.Set(&s, val); err != nil {
			*anomalies++
		}
	}
	return s, true
}
