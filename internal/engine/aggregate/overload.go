package aggregate

import (
	"fmt"
	"sort"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// Overload detection margins. A cell is overloaded when it carries
// markedly more than its share of samples AND its users see markedly
// worse throughput than the network average.
const (
	overloadAbsMin     = 30  // never flag a cell on fewer samples than this
	overloadDensity    = 1.5 // multiple of the per-cell mean sample count
	overloadThroughput = 0.8 // fraction of the network mean DL throughput
)

type cellLoad struct {
	id      string
	samples int
	dlSum   float64
	dlN     int
}

func (c *cellLoad) meanDL() float64 {
	if c.dlN == 0 {
		return 0
	}
	return c.dlSum / float64(c.dlN)
}

// AnalyzeOverload reports per-cell load and the cells whose density and
// degraded throughput indicate congestion.
func AnalyzeOverload(tbl *model.Table, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeOverload)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}

	byCell := make(map[string]*cellLoad)
	var netDLSum float64
	netDLN := 0
	for i := range tbl.Samples {
		s := &tbl.Samples[i]
		if s.ServingCellID == "" {
			continue
		}
		c := byCell[s.ServingCellID]
		if c == nil {
			c = &cellLoad{id: s.ServingCellID}
			byCell[s.ServingCellID] = c
		}
		c.samples++
		if s.ThroughputDL != nil {
			c.dlSum += *s.ThroughputDL
			c.dlN++
			netDLSum += *s.ThroughputDL
			netDLN++
		}
	}
	r.KPIs["total_cells"] = float64(len(byCell))
	if len(byCell) == 0 {
		r.Note = "no samples carry a serving cell"
		r.KPIs["overloaded_cells"] = 0
		r.KPIs["overloaded_cells_pct"] = 0
		return r
	}

	meanPerCell := float64(tbl.Len()) / float64(len(byCell))
	densityFloor := overloadDensity * meanPerCell
	if densityFloor < overloadAbsMin {
		densityFloor = overloadAbsMin
	}
	netMeanDL := 0.0
	if netDLN > 0 {
		netMeanDL = netDLSum / float64(netDLN)
	}

	cells := make([]*cellLoad, 0, len(byCell))
	for _, c := range byCell {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].id < cells[j].id })

	var overloaded []*cellLoad
	for _, c := range cells {
		if float64(c.samples) <= densityFloor {
			continue
		}
		if netDLN == 0 || c.dlN == 0 || c.meanDL() >= overloadThroughput*netMeanDL {
			continue
		}
		overloaded = append(overloaded, c)
		r.Counts[c.id] = c.samples
	}
	r.KPIs["overloaded_cells"] = float64(len(overloaded))
	r.KPIs["overloaded_cells_pct"] = pct(len(overloaded), len(byCell))

	// Locate the overloaded cells on the map through their own samples.
	var cands []cluster.Candidate
	for _, c := range overloaded {
		for i := range tbl.Samples {
			s := &tbl.Samples[i]
			if s.ServingCellID != c.id {
				continue
			}
			if cand, ok := cluster.FromSample(s); ok {
				cands = append(cands, cand)
			}
		}
	}
	r.Areas = cluster.Areas(model.TypeOverload, cands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("Overloaded cell %s: %d samples in this area", c.CellID, c.Count)
		})
	return r
}
