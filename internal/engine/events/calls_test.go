package events

import (
	"math"
	"testing"

	"github.com/drivesight/drivesight/internal/engine/testdata"
	"github.com/drivesight/drivesight/internal/model"
)

func TestCallsCompletedAndDropped(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Marker(MarkerCallSetup)),
		testdata.S(1, testdata.Marker(MarkerCallConnected)),
		testdata.S(2, testdata.Marker(MarkerCallEnd)),
		testdata.S(3, testdata.Marker(MarkerCallSetup)),
		testdata.S(4, testdata.Marker(MarkerCallDrop), testdata.RF(-120, -18, -2)),
	)
	r := AnalyzeCalls(tbl, clCfg)

	if r.KPI("total_calls") != 2 || r.KPI("completed_calls") != 1 || r.KPI("dropped_calls") != 1 {
		t.Fatalf("unexpected KPIs: %+v", r.KPIs)
	}
	if rate := r.KPI("call_drop_rate"); rate != 50 {
		t.Fatalf("drop rate = %.2f, want 50", rate)
	}
	// Drop at RSRP -120 attributes to weak coverage.
	if r.Counts[CauseWeakCoverage] != 1 {
		t.Fatalf("expected weak_coverage drop cause, got %+v", r.Counts)
	}
}

func TestCallsTotalsInvariant(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Marker(MarkerCallSetup)),
		testdata.S(1, testdata.Marker(MarkerCallEnd)),
		testdata.S(2, testdata.Marker(MarkerCallSetup)),
		testdata.S(3, testdata.Marker(MarkerCallDrop)),
		testdata.S(4, testdata.Marker(MarkerCallSetup)),
		testdata.S(5, testdata.Marker(MarkerCallEnd)),
		testdata.S(6, testdata.Marker(MarkerCallSetup)), // unterminated
	)
	r := AnalyzeCalls(tbl, clCfg)

	total := r.KPI("total_calls")
	if r.KPI("completed_calls")+r.KPI("dropped_calls") != total {
		t.Fatalf("completed + dropped != total: %+v", r.KPIs)
	}
	if total != 3 {
		t.Fatalf("total_calls = %v, want 3 (unterminated excluded)", total)
	}
	if r.KPI("unresolved_calls") != 1 {
		t.Fatalf("unresolved not reported: %+v", r.KPIs)
	}
}

func TestCallsFromStateEdges(t *testing.T) {
	// Export without markers: the call_state column drives the scan.
	tbl := testdata.Table(
		testdata.S(0, testdata.Call("idle")),
		testdata.S(1, testdata.Call("setup")),
		testdata.S(2, testdata.Call("connected")),
		testdata.S(3, testdata.Call("connected")),
		testdata.S(4, testdata.Call("drop"), testdata.RF(-90, -10, -5)),
	)
	r := AnalyzeCalls(tbl, clCfg)

	if r.KPI("total_calls") != 1 || r.KPI("dropped_calls") != 1 {
		t.Fatalf("unexpected KPIs: %+v", r.KPIs)
	}
	// Good power, negative SINR: interference drop.
	if r.Counts[CauseInterference] != 1 {
		t.Fatalf("expected interference cause, got %+v", r.Counts)
	}
}

func TestCallsOrphanCloseIgnored(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Marker(MarkerCallEnd)),  // orphan
		testdata.S(1, testdata.Marker(MarkerCallDrop)), // orphan
		testdata.S(2, testdata.Marker(MarkerCallSetup)),
		testdata.S(3, testdata.Marker(MarkerCallEnd)),
	)
	r := AnalyzeCalls(tbl, clCfg)

	if r.KPI("total_calls") != 1 || r.KPI("dropped_calls") != 0 {
		t.Fatalf("orphans leaked into totals: %+v", r.KPIs)
	}
	if r.KPI("orphan_markers") != 2 {
		t.Fatalf("orphans not counted: %+v", r.KPIs)
	}
}

func TestCallsSixPercentDropRate(t *testing.T) {
	// 50 calls, 3 dropped: the 6% rate drives the High root-cause rule.
	var samples []model.Sample
	for i := 0; i < 50; i++ {
		samples = append(samples, testdata.S(2*i, testdata.Marker(MarkerCallSetup)))
		end := MarkerCallEnd
		if i < 3 {
			end = MarkerCallDrop
		}
		samples = append(samples, testdata.S(2*i+1, testdata.Marker(end)))
	}
	r := AnalyzeCalls(testdata.Table(samples...), clCfg)

	if rate := r.KPI("call_drop_rate"); math.Abs(rate-6) > 1e-9 {
		t.Fatalf("drop rate = %v, want 6", rate)
	}
}

func TestCallsEmptyTable(t *testing.T) {
	r := AnalyzeCalls(&model.Table{}, clCfg)
	if r.KPI("call_drop_rate") != 0 || r.Note == "" {
		t.Fatalf("empty table: rate=%v note=%q", r.KPI("call_drop_rate"), r.Note)
	}
}
