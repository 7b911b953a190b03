package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/drivesight/drivesight/internal/model"
)

// Text renders a human-readable report with aligned KPI tables.
type Text struct {
	Verbosity Verbosity
}

func (t *Text) Render(w io.Writer, run *model.Run) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Drive Test Analysis: %s\n", run.Source)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 22+len(run.Source)))
	fmt.Fprintf(&b, "Format:   %s\n", run.Format)
	fmt.Fprintf(&b, "Samples:  %s\n", humanize.Comma(int64(run.SampleCount)))
	if !run.Start.IsZero() {
		fmt.Fprintf(&b, "Window:   %s .. %s\n",
			run.Start.Format("2006-01-02 15:04:05"), run.End.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "Thresholds: RSRP %.1f dBm, RSRQ %.1f dB, SINR %.1f dB\n",
		run.Thresholds.RSRP, run.Thresholds.RSRQ, run.Thresholds.SINR)
	if run.Degraded {
		fmt.Fprintf(&b, "\nWARNING: %s\n", run.DegradedReason)
	}

	for _, res := range run.Results {
		b.WriteString("\n")
		t.renderResult(&b, res)
	}

	b.WriteString("\nFindings\n--------\n")
	if len(run.Findings) == 0 {
		b.WriteString("No issues crossed the reporting thresholds.\n")
	}
	for i, f := range run.Findings {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, f.Severity, f.Issue, f.Description)
		fmt.Fprintf(&b, "   Recommendation: %s\n", f.Recommendation)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (t *Text) renderResult(b *strings.Builder, res *model.Result) {
	fmt.Fprintf(b, "%s\n%s\n", res.Type, strings.Repeat("-", len(res.Type)))
	if res.Note != "" {
		fmt.Fprintf(b, "Note: %s\n", res.Note)
	}

	tw := tabwriter.NewWriter(b, 2, 4, 2, ' ', 0)
	for _, k := range sortedKeys(res.KPIs) {
		fmt.Fprintf(tw, "  %s\t%s\n", k, formatKPI(k, res.KPIs[k]))
	}
	tw.Flush()

	if t.Verbosity == Minimal {
		return
	}

	if len(res.Counts) > 0 {
		b.WriteString("  causes/categories:\n")
		for _, k := range sortedKeys(res.Counts) {
			fmt.Fprintf(b, "    %s: %d\n", k, res.Counts[k])
		}
	}
	for _, a := range res.Areas {
		fmt.Fprintf(b, "  area [%s] (%.5f, %.5f) r=%.0fm samples=%d cell=%s\n",
			a.Severity, a.CenterLat, a.CenterLon, a.RadiusM, a.SampleCount, orDash(a.CellID))
		fmt.Fprintf(b, "    %s\n", a.Description)
	}

	if t.Verbosity == Full {
		for _, ev := range res.Events {
			end := "open"
			if !ev.End.IsZero() {
				end = ev.End.Format("15:04:05")
			}
			fmt.Fprintf(b, "  event %s %s..%s outcome=%s", ev.Kind,
				ev.Start.Format("15:04:05"), end, ev.Outcome)
			if ev.Cause != "" {
				fmt.Fprintf(b, " cause=%s", ev.Cause)
			}
			if ev.SourceCell != "" || ev.TargetCell != "" {
				fmt.Fprintf(b, " %s->%s", orDash(ev.SourceCell), orDash(ev.TargetCell))
			}
			b.WriteString("\n")
		}
	}
}

// formatKPI picks a precision fitting the KPI kind: percentages and
// rates keep two decimals, counts render whole.
func formatKPI(key string, v float64) string {
	if strings.HasSuffix(key, "_pct") || strings.HasSuffix(key, "_rate") {
		return fmt.Sprintf("%.2f%%", v)
	}
	if v == float64(int64(v)) {
		return humanize.Comma(int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
