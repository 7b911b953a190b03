package aggregate

import (
	"fmt"
	"sort"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// CellRef is the expected operational configuration of one cell.
type CellRef struct {
	CellID string
	PCI    int
	EARFCN int
}

// cellObserved collects what the drive actually saw for one cell.
type cellObserved struct {
	id      string
	pcis    map[int]int // value -> occurrences
	earfcns map[int]int
	cands   []cluster.Candidate
}

// AnalyzeParams compares observed per-cell parameters against the
// expected reference. Cells without a reference entry are checked for
// internal consistency instead: one cell broadcasting more than one PCI
// or EARFCN during a single drive indicates a configuration problem.
func AnalyzeParams(tbl *model.Table, refs []CellRef, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeParams)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}

	refByID := make(map[string]CellRef, len(refs))
	for _, ref := range refs {
		refByID[ref.CellID] = ref
	}

	observed := make(map[string]*cellObserved)
	for i := range tbl.Samples {
		s := &tbl.Samples[i]
		if s.ServingCellID == "" || (s.PCI == nil && s.EARFCN == nil) {
			continue
		}
		o := observed[s.ServingCellID]
		if o == nil {
			o = &cellObserved{
				id:      s.ServingCellID,
				pcis:    make(map[int]int),
				earfcns: make(map[int]int),
			}
			observed[s.ServingCellID] = o
		}
		if s.PCI != nil {
			o.pcis[*s.PCI]++
		}
		if s.EARFCN != nil {
			o.earfcns[*s.EARFCN]++
		}
		if c, ok := cluster.FromSample(s); ok {
			o.cands = append(o.cands, c)
		}
	}
	r.KPIs["cells_checked"] = float64(len(observed))
	if len(observed) == 0 {
		r.Note = "no samples carry PCI or EARFCN"
		r.KPIs["param_mismatches"] = 0
		return r
	}

	cells := make([]*cellObserved, 0, len(observed))
	for _, o := range observed {
		cells = append(cells, o)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].id < cells[j].id })

	mismatches := 0
	var cands []cluster.Candidate
	for _, o := range cells {
		var problems []string
		if ref, ok := refByID[o.id]; ok {
			for pci := range o.pcis {
				if pci != ref.PCI {
					problems = append(problems, fmt.Sprintf("pci %d observed, %d expected", pci, ref.PCI))
				}
			}
			for earfcn := range o.earfcns {
				if earfcn != ref.EARFCN {
					problems = append(problems, fmt.Sprintf("earfcn %d observed, %d expected", earfcn, ref.EARFCN))
				}
			}
		} else {
			if len(o.pcis) > 1 {
				problems = append(problems, fmt.Sprintf("%d distinct PCIs observed", len(o.pcis)))
			}
			if len(o.earfcns) > 1 {
				problems = append(problems, fmt.Sprintf("%d distinct EARFCNs observed", len(o.earfcns)))
			}
		}
		if len(problems) == 0 {
			continue
		}
		sort.Strings(problems)
		mismatches += len(problems)
		for _, p := range problems {
			r.Counts[o.id+": "+p]++
		}
		cands = append(cands, o.cands...)
	}
	r.KPIs["param_mismatches"] = float64(mismatches)

	r.Areas = cluster.Areas(model.TypeParams, cands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("Parameter mismatch on cell %s across %d samples", c.CellID, c.Count)
		})
	return r
}
