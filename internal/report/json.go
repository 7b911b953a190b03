package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/drivesight/drivesight/internal/model"
)

// JSON renders the full run structure for machine consumers.
type JSON struct {
	Pretty bool
}

func (j *JSON) Render(w io.Writer, run *model.Run) error {
	enc := json.NewEncoder(w)
	if j.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}
