package ingest

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OpenText opens path for reading as UTF-8 text, transparently decoding
// UTF-16 (either byte order) and stripping byte order marks. Drive-test
// tools on Windows commonly export UTF-16 CSV.
func OpenText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &textFile{Reader: transform.NewReader(f, dec), f: f}, nil
}

type textFile struct {
	io.Reader
	f *os.File
}

func (t *textFile) Close() error { return t.f.Close() }
