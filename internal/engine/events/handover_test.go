package events

import (
	"math"
	"testing"
	"time"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/engine/testdata"
	"github.com/drivesight/drivesight/internal/model"
)

var clCfg = cluster.Config{RadiusM: 100, MinSamples: 3}

func TestHandoverExplicitMarkers(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Cell("cell-a")),
		testdata.S(1, testdata.Cell("cell-a"), testdata.Marker(MarkerHOStart)),
		testdata.S(2, testdata.Cell("cell-b"), testdata.Marker(MarkerHOSuccess)),
		testdata.S(3, testdata.Cell("cell-b")),
	)
	r := AnalyzeHandovers(tbl, Config{}, clCfg)

	if r.KPI("total_handovers") != 1 || r.KPI("successful_handovers") != 1 {
		t.Fatalf("unexpected KPIs: %+v", r.KPIs)
	}
	if r.KPI("handover_success_rate") != 100 {
		t.Fatalf("success rate = %.2f, want 100", r.KPI("handover_success_rate"))
	}
	if len(r.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(r.Events))
	}
	ev := r.Events[0]
	if ev.SourceCell != "cell-a" || ev.TargetCell != "cell-b" {
		t.Fatalf("cells = %s -> %s, want cell-a -> cell-b", ev.SourceCell, ev.TargetCell)
	}
}

func TestHandoverImplicitCellChange(t *testing.T) {
	// Unmarked change to cell-b, stable for the default window.
	tbl := testdata.Drive(8, func(i int) model.Sample {
		cell := "cell-a"
		if i >= 4 {
			cell = "cell-b"
		}
		return testdata.S(i, testdata.Cell(cell))
	})
	r := AnalyzeHandovers(tbl, Config{}, clCfg)

	if r.KPI("total_handovers") != 1 || r.KPI("successful_handovers") != 1 {
		t.Fatalf("unexpected KPIs: %+v", r.KPIs)
	}
	// The attempt opens at the sample preceding the change.
	if got := r.Events[0].Start; !got.Equal(testdata.Base.Add(3 * time.Second)) {
		t.Fatalf("start = %v, want the pre-change sample", got)
	}
}

func TestHandoverReversionIsFailure(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Cell("cell-a")),
		testdata.S(1, testdata.Cell("cell-b")),
		testdata.S(2, testdata.Cell("cell-a")), // reverted before stabilizing
		testdata.S(3, testdata.Cell("cell-a")),
		testdata.S(4, testdata.Cell("cell-a")),
		testdata.S(5, testdata.Cell("cell-a")),
	)
	r := AnalyzeHandovers(tbl, Config{}, clCfg)

	if r.KPI("failed_handovers") != 1 {
		t.Fatalf("expected 1 failure, got %+v", r.KPIs)
	}
	if r.KPI("handover_success_rate") != 0 {
		t.Fatalf("success rate = %.2f, want 0", r.KPI("handover_success_rate"))
	}
}

func TestHandoverThreeAttemptsTwoFailures(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Cell("cell-a")),
		testdata.S(1, testdata.Cell("cell-a"), testdata.Marker(MarkerHOStart)),
		testdata.S(2, testdata.Cell("cell-b"), testdata.Marker(MarkerHOSuccess)),
		testdata.S(3, testdata.Cell("cell-b"), testdata.Marker(MarkerHOStart)),
		testdata.S(4, testdata.Cell("cell-b"), testdata.Marker(MarkerHOFailure)),
		testdata.S(5, testdata.Cell("cell-b"), testdata.Marker(MarkerHOStart)),
		testdata.S(6, testdata.Cell("cell-b"), testdata.Marker(MarkerHOFailure)),
	)
	r := AnalyzeHandovers(tbl, Config{}, clCfg)

	if r.KPI("total_handovers") != 3 || r.KPI("successful_handovers") != 1 {
		t.Fatalf("unexpected KPIs: %+v", r.KPIs)
	}
	if rate := r.KPI("handover_success_rate"); math.Abs(rate-33.33) > 0.01 {
		t.Fatalf("success rate = %.2f, want 33.33", rate)
	}
}

func TestHandoverOrphanAndDuplicateMarkers(t *testing.T) {
	base := testdata.Table(
		testdata.S(0, testdata.Cell("cell-a")),
		testdata.S(1, testdata.Cell("cell-a"), testdata.Marker(MarkerHOStart)),
		testdata.S(2, testdata.Cell("cell-b"), testdata.Marker(MarkerHOSuccess)),
	)
	before := AnalyzeHandovers(base, Config{}, clCfg)

	noisy := testdata.Table(
		testdata.S(0, testdata.Cell("cell-a")),
		testdata.S(1, testdata.Cell("cell-a"), testdata.Marker(MarkerHOStart)),
		testdata.S(2, testdata.Cell("cell-a"), testdata.Marker(MarkerHOStart)), // duplicate open
		testdata.S(3, testdata.Cell("cell-b"), testdata.Marker(MarkerHOSuccess)),
		testdata.S(4, testdata.Cell("cell-b"), testdata.Marker(MarkerHOSuccess)), // orphan close
	)
	after := AnalyzeHandovers(noisy, Config{}, clCfg)

	if before.KPI("total_handovers") != after.KPI("total_handovers") {
		t.Fatalf("noise changed totals: %v vs %v",
			before.KPI("total_handovers"), after.KPI("total_handovers"))
	}
	if after.KPI("duplicate_markers") != 1 || after.KPI("orphan_markers") != 1 {
		t.Fatalf("anomalies not counted: %+v", after.KPIs)
	}
}

func TestHandoverUnterminatedIsUnknown(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Cell("cell-a")),
		testdata.S(1, testdata.Cell("cell-a"), testdata.Marker(MarkerHOStart)),
	)
	r := AnalyzeHandovers(tbl, Config{}, clCfg)

	if r.KPI("total_handovers") != 0 {
		t.Fatalf("unterminated attempt counted in totals: %+v", r.KPIs)
	}
	if r.KPI("unresolved_handovers") != 1 {
		t.Fatalf("unresolved not reported: %+v", r.KPIs)
	}
	if len(r.Events) != 1 || r.Events[0].Outcome != model.OutcomeUnknown {
		t.Fatalf("expected one Unknown event, got %+v", r.Events)
	}
}

func TestHandoverMissingNeighborCause(t *testing.T) {
	// Failure before any target cell is observed.
	tbl := testdata.Table(
		testdata.S(0, testdata.Cell("cell-a")),
		testdata.S(1, testdata.Cell("cell-a"), testdata.Marker(MarkerHOStart)),
		testdata.S(2, testdata.Cell("cell-a"), testdata.Marker(MarkerHOFailure)),
	)
	r := AnalyzeHandovers(tbl, Config{}, clCfg)

	if r.Counts[CauseMissingNeighbor] != 1 {
		t.Fatalf("expected missing_neighbor cause, got %+v", r.Counts)
	}
}

func TestHandoverEmptyTable(t *testing.T) {
	r := AnalyzeHandovers(&model.Table{}, Config{}, clCfg)
	if r.KPI("handover_success_rate") != 0 {
		t.Fatalf("empty table rate = %v, want 0", r.KPI("handover_success_rate"))
	}
	if r.Note == "" {
		t.Fatal("empty table should carry an explanatory note")
	}
	if len(r.Areas) != 0 {
		t.Fatalf("empty table produced areas: %v", r.Areas)
	}
}
