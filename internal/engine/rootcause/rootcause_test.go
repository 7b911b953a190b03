package rootcause

import (
	"testing"

	"github.com/drivesight/drivesight/internal/model"
)

func result(typ string, kpis map[string]float64) *model.Result {
	r := model.NewResult(typ)
	for k, v := range kpis {
		r.KPIs[k] = v
	}
	return r
}

func TestEvaluateEmptyResults(t *testing.T) {
	if got := Evaluate(nil); len(got) != 0 {
		t.Fatalf("expected no findings, got %+v", got)
	}
	// Zero-valued results trigger nothing.
	var rs []*model.Result
	for _, typ := range model.AllTypes() {
		rs = append(rs, model.NewResult(typ))
	}
	if got := Evaluate(rs); len(got) != 0 {
		t.Fatalf("zero KPIs produced findings: %+v", got)
	}
}

func TestCoverageEscalation(t *testing.T) {
	tests := []struct {
		pct      float64
		findings int
		severity string
	}{
		{5, 0, ""},
		{10, 0, ""}, // boundary is exclusive
		{15, 1, model.SeverityMedium},
		{30, 1, model.SeverityHigh},
	}
	for _, tt := range tests {
		rs := []*model.Result{result(model.TypeCoverage, map[string]float64{"coverage_issues_pct": tt.pct})}
		got := Evaluate(rs)
		if len(got) != tt.findings {
			t.Fatalf("pct=%v: %d findings, want %d", tt.pct, len(got), tt.findings)
		}
		if tt.findings > 0 && got[0].Severity != tt.severity {
			t.Fatalf("pct=%v: severity %s, want %s", tt.pct, got[0].Severity, tt.severity)
		}
	}
}

func TestCallDropSixPercentIsHigh(t *testing.T) {
	rs := []*model.Result{result(model.TypeCallDrops, map[string]float64{
		"total_calls":    50,
		"call_drop_rate": 6,
	})}
	got := Evaluate(rs)
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %+v", got)
	}
	if got[0].Issue != "Call Drops" || got[0].Severity != model.SeverityHigh {
		t.Fatalf("got %+v, want High Call Drops", got[0])
	}
	if got[0].Recommendation == "" {
		t.Fatal("finding missing recommendation text")
	}
}

func TestHandoverRuleGatedOnAttempts(t *testing.T) {
	// Rate 0 with no attempts must not report.
	rs := []*model.Result{result(model.TypeHandover, map[string]float64{
		"total_handovers":       0,
		"handover_success_rate": 0,
	})}
	if got := Evaluate(rs); len(got) != 0 {
		t.Fatalf("gated rule fired on empty population: %+v", got)
	}

	rs = []*model.Result{result(model.TypeHandover, map[string]float64{
		"total_handovers":       10,
		"handover_success_rate": 85,
	})}
	got := Evaluate(rs)
	if len(got) != 1 || got[0].Severity != model.SeverityHigh {
		t.Fatalf("expected High handover finding, got %+v", got)
	}
}

func TestOverloadHighOnCellShare(t *testing.T) {
	rs := []*model.Result{result(model.TypeOverload, map[string]float64{
		"overloaded_cells":     2,
		"overloaded_cells_pct": 10,
	})}
	got := Evaluate(rs)
	if len(got) != 1 || got[0].Severity != model.SeverityMedium {
		t.Fatalf("expected Medium overload finding, got %+v", got)
	}

	rs = []*model.Result{result(model.TypeOverload, map[string]float64{
		"overloaded_cells":     5,
		"overloaded_cells_pct": 25,
	})}
	got = Evaluate(rs)
	if len(got) != 1 || got[0].Severity != model.SeverityHigh {
		t.Fatalf("expected High overload finding, got %+v", got)
	}
}

func TestThroughputBoundsPerDirection(t *testing.T) {
	// Three DL plus three UL areas sum past the bound, but neither
	// direction alone crosses it; no finding.
	rs := []*model.Result{result(model.TypeThroughput, map[string]float64{
		"dl_bottleneck_areas": 3,
		"ul_bottleneck_areas": 3,
		"bottleneck_areas":    6,
	})}
	if got := Evaluate(rs); len(got) != 0 {
		t.Fatalf("summed directions triggered a finding: %+v", got)
	}

	rs = []*model.Result{result(model.TypeThroughput, map[string]float64{
		"dl_bottleneck_areas": 6,
		"ul_bottleneck_areas": 2,
		"bottleneck_areas":    8,
	})}
	got := Evaluate(rs)
	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %+v", got)
	}
	if got[0].Description != "Low throughput areas identified: 6 DL and 2 UL locations" {
		t.Fatalf("description = %q", got[0].Description)
	}

	rs = []*model.Result{result(model.TypeThroughput, map[string]float64{
		"dl_bottleneck_areas": 0,
		"ul_bottleneck_areas": 7,
		"bottleneck_areas":    7,
	})}
	if got := Evaluate(rs); len(got) != 1 {
		t.Fatalf("UL-only overrun must report, got %+v", got)
	}
}

func TestThroughputNeverHigh(t *testing.T) {
	rs := []*model.Result{result(model.TypeThroughput, map[string]float64{"dl_bottleneck_areas": 40})}
	got := Evaluate(rs)
	if len(got) != 1 || got[0].Severity != model.SeverityMedium {
		t.Fatalf("bottleneck severity should cap at Medium, got %+v", got)
	}
}

func TestFindingsOrderedBySeverityThenMagnitude(t *testing.T) {
	// Interference is High (+20) and leads; among the Mediums, coverage
	// (+2) outranks call drops (+1).
	rs := []*model.Result{
		result(model.TypeCoverage, map[string]float64{"coverage_issues_pct": 12}),
		result(model.TypeInterference, map[string]float64{"interference_issues_pct": 30}),
		result(model.TypeCallDrops, map[string]float64{"total_calls": 10, "call_drop_rate": 3}),
	}
	got := Evaluate(rs)
	if len(got) != 3 {
		t.Fatalf("expected 3 findings, got %+v", got)
	}
	if got[0].Issue != "Interference" {
		t.Fatalf("High finding not first: %+v", got)
	}
	if got[1].Issue != "Weak Coverage" || got[2].Issue != "Call Drops" {
		t.Fatalf("Medium findings not ordered by magnitude: %+v", got)
	}
}
