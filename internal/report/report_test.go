package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/drivesight/drivesight/internal/model"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleRun() *model.Run {
	cov := model.NewResult(model.TypeCoverage)
	cov.KPIs["coverage_issues_pct"] = 42.5
	cov.KPIs["samples_classified"] = 1200
	cov.Counts["weak_rsrp"] = 17
	cov.Areas = []model.ProblemArea{{
		Type:        model.TypeCoverage,
		CenterLat:   40.7128,
		CenterLon:   -74.0060,
		SampleCount: 12,
		CellID:      "cell-1",
		Severity:    model.SeverityCritical,
		Description: "Weak coverage area",
	}}
	ho := model.NewResult(model.TypeHandover)
	ho.KPIs["handover_success_rate"] = 33.33
	ho.Events = []model.Event{{
		Kind: model.EventHandover, Start: t0, End: t0.Add(2 * time.Second),
		Outcome: model.OutcomeFailure, Cause: "missing_neighbor",
		SourceCell: "cell-1", TargetCell: "cell-2",
	}}
	return &model.Run{
		Source:      "drive.csv",
		Format:      "csv",
		SampleCount: 1200,
		Start:       t0,
		End:         t0.Add(20 * time.Minute),
		Thresholds:  model.ThresholdSnapshot{RSRP: -105, RSRQ: -15, SINR: 5},
		Results:     []*model.Result{cov, ho},
		Findings: []model.Finding{{
			Issue:          "Weak Coverage",
			Severity:       model.SeverityHigh,
			Description:    "42.5% of samples show weak coverage",
			Recommendation: "Add sites.",
		}},
	}
}

func TestTextRenderStandard(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Text{Verbosity: Standard}).Render(&buf, sampleRun()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Drive Test Analysis: drive.csv",
		"Samples:  1,200",
		model.TypeCoverage,
		"coverage_issues_pct",
		"42.50%",
		"weak_rsrp: 17",
		"area [Critical]",
		"[High] Weak Coverage",
		"Recommendation: Add sites.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output missing %q:\n%s", want, out)
		}
	}
	// Events only render at Full.
	if strings.Contains(out, "missing_neighbor") {
		t.Fatal("Standard verbosity leaked event details")
	}
}

func TestTextRenderVerbosityLevels(t *testing.T) {
	var minimal, full bytes.Buffer
	if err := (&Text{Verbosity: Minimal}).Render(&minimal, sampleRun()); err != nil {
		t.Fatalf("render minimal: %v", err)
	}
	if err := (&Text{Verbosity: Full}).Render(&full, sampleRun()); err != nil {
		t.Fatalf("render full: %v", err)
	}

	if strings.Contains(minimal.String(), "area [Critical]") {
		t.Fatal("Minimal verbosity rendered areas")
	}
	if !strings.Contains(full.String(), "cause=missing_neighbor") {
		t.Fatal("Full verbosity missing event details")
	}
}

func TestJSONRenderRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSON{}).Render(&buf, sampleRun()); err != nil {
		t.Fatalf("render: %v", err)
	}
	var got model.Run
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Source != "drive.csv" || len(got.Results) != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Results[0].KPIs["coverage_issues_pct"] != 42.5 {
		t.Fatalf("KPIs lost: %+v", got.Results[0])
	}
}

func TestCSVRenderFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSV{}).Render(&buf, sampleRun()); err != nil {
		t.Fatalf("render: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	wantHeader := []string{"Issue", "Severity", "Description", "Recommendation"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Fatalf("header = %v, want %v", rows[0], wantHeader)
		}
	}
	if rows[1][0] != "Weak Coverage" || rows[1][1] != "High" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
}

func TestNewRendererSelection(t *testing.T) {
	for _, format := range []string{"", "text", "json", "csv"} {
		if _, err := New(format, Standard); err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
	}
	if _, err := New("xml", Standard); err == nil {
		t.Fatal("unknown format accepted")
	}
}

func TestParseVerbosity(t *testing.T) {
	if ParseVerbosity("minimal") != Minimal || ParseVerbosity("full") != Full {
		t.Fatal("explicit levels not parsed")
	}
	if ParseVerbosity("anything") != Standard {
		t.Fatal("unknown level should default to Standard")
	}
}
