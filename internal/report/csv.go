package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/drivesight/drivesight/internal/model"
)

// CSV renders the findings table as a flat summary export.
type CSV struct{}

func (c *CSV) Render(w io.Writer, run *model.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Issue", "Severity", "Description", "Recommendation"}); err != nil {
		return fmt.Errorf("report: write csv header: %w", err)
	}
	for _, f := range run.Findings {
		if err := cw.Write([]string{f.Issue, f.Severity, f.Description, f.Recommendation}); err != nil {
			return fmt.Errorf("report: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
