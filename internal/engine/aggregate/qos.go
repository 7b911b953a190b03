package aggregate

import (
	"fmt"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// QoS floors. MOS below 3.0 is the accepted bound of degraded voice;
// QCI 8 and 9 are best-effort bearers, degraded service when carrying a
// connected voice call.
const mosFloor = 3.0

func bestEffortQCI(qci int) bool { return qci == 8 || qci == 9 }

// AnalyzeQoS reports the share of degraded voice-quality samples and of
// voice traffic riding best-effort bearers. Samples missing the metric
// are excluded from that percentage's denominator.
func AnalyzeQoS(tbl *model.Table, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeQoS)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}

	var mosN, mosLow int
	var qciN, qciBad int
	var cands []cluster.Candidate
	for i := range tbl.Samples {
		s := &tbl.Samples[i]
		if s.MOS != nil {
			mosN++
			if *s.MOS < mosFloor {
				mosLow++
				r.Counts["low_mos"]++
				if c, ok := cluster.FromSample(s); ok {
					cands = append(cands, c)
				}
			}
		}
		if s.QCI != nil && s.CallState == "connected" {
			qciN++
			if bestEffortQCI(*s.QCI) {
				qciBad++
				r.Counts["best_effort_voice"]++
			}
		}
	}

	r.KPIs["volte_mos_issues_pct"] = pct(mosLow, mosN)
	r.KPIs["qci_issues_pct"] = pct(qciBad, qciN)
	r.KPIs["mos_samples"] = float64(mosN)
	r.KPIs["qci_samples"] = float64(qciN)

	r.Areas = cluster.Areas(model.TypeQoS, cands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("Degraded voice quality across %d samples", c.Count)
		})

	if mosN == 0 && qciN == 0 {
		r.Note = "no samples carry QoS measurements"
	}
	return r
}
