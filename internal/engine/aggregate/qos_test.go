package aggregate

import (
	"testing"

	"github.com/drivesight/drivesight/internal/engine/testdata"
)

func TestQoSMOSIssues(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.MOS(4.1)),
		testdata.S(1, testdata.MOS(2.2)),
		testdata.S(2, testdata.MOS(2.8)),
		testdata.S(3, testdata.MOS(3.6)),
		testdata.S(4), // no MOS: excluded from the denominator
	)
	r := AnalyzeQoS(tbl, clCfg)

	if got := r.KPI("volte_mos_issues_pct"); got != 50 {
		t.Fatalf("volte_mos_issues_pct = %v, want 50", got)
	}
	if r.KPI("mos_samples") != 4 {
		t.Fatalf("mos_samples = %v, want 4", r.KPI("mos_samples"))
	}
	if r.Counts["low_mos"] != 2 {
		t.Fatalf("low_mos count = %v, want 2", r.Counts["low_mos"])
	}
}

func TestQoSBestEffortVoice(t *testing.T) {
	tbl := testdata.Table(
		testdata.S(0, testdata.Call("connected"), testdata.QCI(1)),
		testdata.S(1, testdata.Call("connected"), testdata.QCI(9)),
		testdata.S(2, testdata.Call("connected"), testdata.QCI(8)),
		testdata.S(3, testdata.Call("connected"), testdata.QCI(1)),
		// QCI outside a call does not count against voice QoS.
		testdata.S(4, testdata.Call("idle"), testdata.QCI(9)),
	)
	r := AnalyzeQoS(tbl, clCfg)

	if got := r.KPI("qci_issues_pct"); got != 50 {
		t.Fatalf("qci_issues_pct = %v, want 50", got)
	}
	if r.KPI("qci_samples") != 4 {
		t.Fatalf("qci_samples = %v, want 4", r.KPI("qci_samples"))
	}
}

func TestQoSNoMeasurements(t *testing.T) {
	tbl := testdata.Table(testdata.S(0), testdata.S(1))
	r := AnalyzeQoS(tbl, clCfg)

	if r.KPI("volte_mos_issues_pct") != 0 || r.KPI("qci_issues_pct") != 0 {
		t.Fatalf("zero population should yield 0, got %+v", r.KPIs)
	}
	if r.Note == "" {
		t.Fatal("expected an explanatory note for missing QoS data")
	}
}
