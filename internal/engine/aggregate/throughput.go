package aggregate

import (
	"fmt"

	"github.com/drivesight/drivesight/internal/engine/cluster"
	"github.com/drivesight/drivesight/internal/model"
)

// Floors are the absolute low-throughput bounds below which a sample is
// a bottleneck candidate. They are fixed constants of the analysis, not
// user thresholds: 2 Mbps DL is the floor for usable interactive data,
// 512 kbps UL the floor for uplink-bound applications.
type Floors struct {
	DLKbps float64
	ULKbps float64
}

// DefaultFloors returns the documented bottleneck floors.
func DefaultFloors() Floors {
	return Floors{DLKbps: 2000, ULKbps: 512}
}

func (f Floors) orDefault() Floors {
	if f.DLKbps <= 0 || f.ULKbps <= 0 {
		return DefaultFloors()
	}
	return f
}

// Bottleneck cause labels.
const (
	CausePoorCoverage = "poor_coverage"
	CauseInterference = "interference"
	CauseCapacity     = "capacity"
)

// Attribution floors: RF below these at the bottleneck sample implicates
// radio conditions; low throughput on healthy RF points at scheduling or
// cell load instead.
const (
	bottleneckRSRP = -110.0 // dBm
	bottleneckSINR = 0.0    // dB
)

// bottleneckCause attributes a low-throughput sample. First match wins.
var bottleneckCause = []struct {
	label string
	match func(s *model.Sample) bool
}{
	{CausePoorCoverage, func(s *model.Sample) bool { return s.RSRP != nil && *s.RSRP < bottleneckRSRP }},
	{CauseInterference, func(s *model.Sample) bool { return s.SINR != nil && *s.SINR < bottleneckSINR }},
}

func attributeBottleneck(s *model.Sample) string {
	for _, r := range bottleneckCause {
		if r.match(s) {
			return r.label
		}
	}
	return CauseCapacity
}

// throughputStats accumulates one direction's distribution.
type throughputStats struct {
	sum, peak float64
	n         int
}

func (t *throughputStats) add(kbps float64) {
	t.sum += kbps
	if kbps > t.peak {
		t.peak = kbps
	}
	t.n++
}

func (t *throughputStats) meanMbps() float64 {
	if t.n == 0 {
		return 0
	}
	return t.sum / float64(t.n) / 1000
}

// AnalyzeThroughput reports the DL/UL throughput distribution in Mbps
// and the clustered bottleneck areas with their attributed causes.
func AnalyzeThroughput(tbl *model.Table, floors Floors, cl cluster.Config) *model.Result {
	r := model.NewResult(model.TypeThroughput)
	if tbl.Len() == 0 {
		r.Note = noteNoSamples
		return r
	}
	floors = floors.orDefault()

	var dl, ul throughputStats
	var dlCands, ulCands []cluster.Candidate
	for i := range tbl.Samples {
		s := &tbl.Samples[i]
		if s.ThroughputDL != nil {
			dl.add(*s.ThroughputDL)
			if *s.ThroughputDL < floors.DLKbps {
				r.Counts[attributeBottleneck(s)]++
				if c, ok := cluster.FromSample(s); ok {
					dlCands = append(dlCands, c)
				}
			}
		}
		if s.ThroughputUL != nil {
			ul.add(*s.ThroughputUL)
			if *s.ThroughputUL < floors.ULKbps {
				r.Counts[attributeBottleneck(s)]++
				if c, ok := cluster.FromSample(s); ok {
					ulCands = append(ulCands, c)
				}
			}
		}
	}

	r.KPIs["avg_dl_throughput"] = dl.meanMbps()
	r.KPIs["avg_ul_throughput"] = ul.meanMbps()
	r.KPIs["peak_dl_throughput"] = dl.peak / 1000
	r.KPIs["peak_ul_throughput"] = ul.peak / 1000
	r.KPIs["dl_samples"] = float64(dl.n)
	r.KPIs["ul_samples"] = float64(ul.n)

	dlAreas := cluster.Areas(model.TypeThroughput, dlCands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("DL throughput below %.1f Mbps across %d samples", floors.DLKbps/1000, c.Count)
		})
	ulAreas := cluster.Areas(model.TypeThroughput, ulCands, cl,
		cluster.ByDensity(cl.MinSamples),
		func(c cluster.Cluster) string {
			return fmt.Sprintf("UL throughput below %.0f kbps across %d samples", floors.ULKbps, c.Count)
		})
	r.KPIs["dl_bottleneck_areas"] = float64(len(dlAreas))
	r.KPIs["ul_bottleneck_areas"] = float64(len(ulAreas))
	r.KPIs["bottleneck_areas"] = float64(len(dlAreas) + len(ulAreas))
	r.Areas = append(dlAreas, ulAreas...)

	if dl.n == 0 && ul.n == 0 {
		r.Note = "no samples carry throughput measurements"
	}
	return r
}
