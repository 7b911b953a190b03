// Package rootcause derives ranked findings from the merged analysis
// results. Every rule reads exactly one pipeline's aggregate output;
// there is no cross-pipeline correlation.
package rootcause

import (
	"fmt"
	"math"
	"sort"

	"github.com/drivesight/drivesight/internal/model"
)

// rule escalates one KPI into a finding. The rule triggers when the KPI
// passes Report (above it, or below it when Below is set) and grades
// High when the severity KPI passes High in the same direction. Gate
// names a KPI that must be nonzero for the rule to apply at all, so
// rates over empty populations never report.
type rule struct {
	issue          string
	source         string // result type the rule reads
	kpi            string
	kpi2           string // optional second KPI; either passing Report triggers
	below          bool
	report         float64
	high           float64
	highKPI        string // defaults to kpi
	gate           string
	format         string // description template, one numeric verb per KPI
	recommendation string
}

var rules = []rule{
	{
		issue: "Weak Coverage", source: model.TypeCoverage,
		kpi: "coverage_issues_pct", report: 10, high: 25,
		format: "%.1f%% of samples show weak coverage",
		recommendation: "Review cell site placement and antenna configurations. " +
			"Consider adding new sites in critical areas.",
	},
	{
		issue: "Interference", source: model.TypeInterference,
		kpi: "interference_issues_pct", report: 10, high: 25,
		format: "%.1f%% of samples show interference",
		recommendation: "Review PCI planning, adjust antenna tilts, and optimize " +
			"frequency planning to reduce interference.",
	},
	{
		issue: "Handover Failures", source: model.TypeHandover,
		kpi: "handover_success_rate", below: true, report: 95, high: 90,
		gate:   "total_handovers",
		format: "Handover success rate is %.2f%%",
		recommendation: "Review neighbor cell lists, optimize handover parameters, " +
			"and check for missing neighbors.",
	},
	{
		issue: "Throughput Bottlenecks", source: model.TypeThroughput,
		kpi: "dl_bottleneck_areas", kpi2: "ul_bottleneck_areas",
		report: 5, high: math.Inf(1),
		format: "Low throughput areas identified: %.0f DL and %.0f UL locations",
		recommendation: "Check resource allocation, scheduling algorithms, and " +
			"consider capacity expansions in affected cells.",
	},
	{
		issue: "Call Drops", source: model.TypeCallDrops,
		kpi: "call_drop_rate", report: 2, high: 5,
		gate:   "total_calls",
		format: "Call drop rate is %.2f%%",
		recommendation: "Review RRC configuration, mobility parameters, and cell " +
			"coverage overlaps to reduce drops.",
	},
	{
		issue: "Cell Overloading", source: model.TypeOverload,
		kpi: "overloaded_cells", report: 0, high: 20, highKPI: "overloaded_cells_pct",
		format: "%.0f cells show signs of congestion",
		recommendation: "Rebalance traffic with load-balancing parameters and plan " +
			"capacity expansion for the congested cells.",
	},
	{
		issue: "Voice Quality Degradation", source: model.TypeQoS,
		kpi: "volte_mos_issues_pct", report: 10, high: 25,
		format: "%.1f%% of voice samples fall below acceptable quality",
		recommendation: "Review QCI configuration and scheduler policies for " +
			"voice bearers.",
	},
	{
		issue: "Data QoS Degradation", source: model.TypeQoS,
		kpi: "qci_issues_pct", report: 10, high: 25,
		format: "%.1f%% of voice traffic rides best-effort bearers",
		recommendation: "Review QCI configuration and scheduler policies for " +
			"voice bearers.",
	},
	{
		issue: "Parameter Mismatches", source: model.TypeParams,
		kpi: "param_mismatches", report: 0, high: math.Inf(1),
		format: "%.0f operational parameter mismatches observed",
		recommendation: "Audit cell configuration against the network plan and " +
			"correct PCI and EARFCN assignments.",
	},
	{
		issue: "RRC Connection Failures", source: model.TypeIdleConn,
		kpi: "rrc_success_rate", below: true, report: 95, high: 90,
		gate:   "total_rrc_attempts",
		format: "RRC connection success rate is %.2f%%",
		recommendation: "Review RRC admission parameters, paging configuration, " +
			"and random-access capacity.",
	},
}

type scored struct {
	finding   model.Finding
	magnitude float64
}

// Evaluate applies the rule table over the results and returns findings
// ordered High before Medium, then by how far the triggering KPI passed
// its escalation bound.
func Evaluate(results []*model.Result) []model.Finding {
	byType := make(map[string]*model.Result, len(results))
	for _, r := range results {
		byType[r.Type] = r
	}

	var out []scored
	for _, ru := range rules {
		res := byType[ru.source]
		if res == nil {
			continue
		}
		if ru.gate != "" && res.KPI(ru.gate) == 0 {
			continue
		}
		v := res.KPI(ru.kpi)
		worst := v
		args := []any{v}
		if ru.kpi2 != "" {
			v2 := res.KPI(ru.kpi2)
			worst = math.Max(v, v2)
			args = append(args, v2)
		}
		triggered := worst > ru.report
		if ru.below {
			triggered = worst < ru.report
		}
		if !triggered {
			continue
		}

		hv := worst
		if ru.highKPI != "" {
			hv = res.KPI(ru.highKPI)
		}
		severity := model.SeverityMedium
		if (ru.below && hv < ru.high) || (!ru.below && hv > ru.high) {
			severity = model.SeverityHigh
		}

		magnitude := worst - ru.report
		if ru.below {
			magnitude = ru.report - worst
		}
		out = append(out, scored{
			finding: model.Finding{
				Issue:          ru.issue,
				Severity:       severity,
				Description:    fmt.Sprintf(ru.format, args...),
				Recommendation: ru.recommendation,
			},
			magnitude: magnitude,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.finding.Severity != b.finding.Severity {
			return a.finding.Severity == model.SeverityHigh
		}
		if a.magnitude != b.magnitude {
			return a.magnitude > b.magnitude
		}
		return a.finding.Issue < b.finding.Issue
	})
	findings := make([]model.Finding, len(out))
	for i, s := range out {
		findings[i] = s.finding
	}
	return findings
}
