package ingest

import (
	"fmt"
	"sort"

	"github.com/drivesight/drivesight/internal/model"
)

// Constructor is a function that creates a new Reader instance.
type Constructor func() Reader

var registry = map[string]Constructor{}

// Register adds a reader constructor under the given format key.
// Format packages call this from init.
func Register(format string, ctor Constructor) {
	registry[format] = ctor
}

// Get returns the reader constructor for the given format key.
func Get(format string) (Constructor, error) {
	ctor, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, format)
	}
	return ctor, nil
}

// Formats returns the registered format keys, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
