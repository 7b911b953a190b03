package rf

import (
	"fmt"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// Severity margins for metric-graded problem areas.
const (
	rsrpMarginDB = 5
	sinrMarginDB = 3
)

const (
	noteNoSamples = "no samples in input; nothing to analyze"
	noteNoRF      = "no samples carry the full RSRP/RSRQ/SINR triple"
)

// AnalyzeMetrics produces the RF Metrics result: the category breakdown
// plus avg/min/max for each of RSRP, RSRQ and SINR. Distribution stats
// are computed per metric over the samples carrying that metric.
func AnalyzeMetrics(tbl *model.Table, thr Thresholds) *model.Result {
	r := model.NewResult(model.TypeRFMetrics)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}
	t := scan(tbl, thr)
	fillBreakdown(r, t)
	if t.classified == 0 {
		r.Note = noteNoRF
	}

	stat(r, "rsrp", tbl, func(s *model.Sample) *float64 { return s.RSRP })
	stat(r, "rsrq", tbl, func(s *model.Sample) *float64 { return s.RSRQ })
	stat(r, "sinr", tbl, func(s *model.Sample) *float64 { return s.SINR })
	return r
}

// AnalyzeCoverage produces the coverage result: issue percentage, the
// clustered coverage problem areas, and the count of Critical ones.
func AnalyzeCoverage(tbl *model.Table, thr Thresholds, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeCoverage)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}
	t := scan(tbl, thr)
	r.KPIs["coverage_issues_pct"] = pct(t.coverage, t.classified)
	r.KPIs["samples_classified"] = float64(t.classified)
	r.KPIs["samples_excluded"] = float64(t.excluded)
	if t.classified == 0 {
		r.Note = noteNoRF
	}
	if t.weakRSRP > 0 {
		r.Counts["weak_rsrp"] = t.weakRSRP
	}
	if t.poorRSRQ > 0 {
		r.Counts["poor_rsrq"] = t.poorRSRQ
	}

	r.Areas = cluster.Areas(model.TypeCoverage, t.coverageCands, cl,
		cluster.ByDeficit(cluster.MetricRSRP, thr.RSRP, rsrpMarginDB),
		func(c cluster.Cluster) string {
			if c.AvgRSRP == nil {
				return ""
			}
			return fmt.Sprintf("Weak coverage: mean RSRP %.1f dBm over %d samples", *c.AvgRSRP, c.Count)
		})
	r.KPIs["critical_areas"] = float64(countSeverity(r.Areas, model.SeverityCritical))
	return r
}

// AnalyzeInterference produces the interference result: issue
// percentage and the clustered high-interference areas.
func AnalyzeInterference(tbl *model.Table, thr Thresholds, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeInterference)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}
	t := scan(tbl, thr)
	r.KPIs["interference_issues_pct"] = pct(t.interference, t.classified)
	r.KPIs["samples_classified"] = float64(t.classified)
	r.KPIs["samples_excluded"] = float64(t.excluded)
	if t.classified == 0 {
		r.Note = noteNoRF
	}

	r.Areas = cluster.Areas(model.TypeInterference, t.interferenceCands, cl,
		cluster.ByDeficit(cluster.MetricSINR, thr.SINR, sinrMarginDB),
		func(c cluster.Cluster) string {
			if c.AvgSINR == nil {
				return ""
			}
			return fmt.Sprintf("High interference: mean SINR %.1f dB over %d samples", *c.AvgSINR, c.Count)
		})
	r.KPIs["high_interference_areas"] = float64(len(r.Areas))
	return r
}

func fillBreakdown(r *model.Result, t tally) {
	r.KPIs["coverage_issues_pct"] = pct(t.coverage, t.classified)
	r.KPIs["interference_issues_pct"] = pct(t.interference, t.classified)
	r.KPIs["good_rf_pct"] = pct(t.good, t.classified)
	r.KPIs["samples_classified"] = float64(t.classified)
	r.KPIs["samples_excluded"] = float64(t.excluded)
}

// stat records avg_/min_/max_ KPIs for one metric, skipping metrics no
// sample carries.
func stat(r *model.Result, name string, tbl *model.Table, get func(*model.Sample) *float64) {
	var sum, min, max float64
	n := 0
	for i := range tbl.Samples {
		v := get(&tbl.Samples[i])
		if v == nil {
			continue
		}
		if n == 0 || *v < min {
			min = *v
		}
		if n == 0 || *v > max {
			max = *v
		}
		sum += *v
		n++
	}
	if n == 0 {
		return
	}
	r.KPIs["avg_"+name] = sum / float64(n)
	r.KPIs["min_"+name] = min
	r.KPIs["max_"+name] = max
}

func countSeverity(areas []model.ProblemArea, severity string) int {
	n := 0
	for _, a := range areas {
		if a.Severity == severity {
			n++
		}
	}
	return n
}
