// Package cluster groups geotagged problem samples into geographic
// problem areas by greedy radius agglomeration.
package cluster

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/drivesight/drivesight/internal/model"
)

// Config controls the agglomeration.
type Config struct {
	RadiusM    float64 // merge radius around a cluster seed, meters
	MinSamples int     // clusters below this size are discarded as noise
}

// Candidate is one flagged sample admitted to clustering.
type Candidate struct {
	TS   time.Time
	Lat  float64
	Lon  float64
	Cell string
	RSRP *float64
	RSRQ *float64
	SINR *float64
}

// FromSample admits a flagged sample for clustering. Samples without
// coordinates are rejected; callers count the rejects.
func FromSample(s *model.Sample) (Candidate, bool) {
	if !s.HasLocation() {
		return Candidate{}, false
	}
	return Candidate{
		TS:   s.Timestamp,
		Lat:  *s.Latitude,
		Lon:  *s.Longitude,
		Cell: s.ServingCellID,
		RSRP: s.RSRP,
		RSRQ: s.RSRQ,
		SINR: s.SINR,
	}, true
}

// Cluster is a group of candidates within Config.RadiusM of its seed.
type Cluster struct {
	CenterLat float64
	CenterLon float64
	RadiusM   float64 // max member distance from the centroid
	Count     int
	CellID    string // mode of member serving cells
	AvgRSRP   *float64
	AvgRSRQ   *float64
	AvgSINR   *float64
}

const earthRadiusMeters = 6371000

// HaversineM returns the great-circle distance between two WGS-84 points
// in meters.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	lat1 *= degToRad
	lon1 *= degToRad
	lat2 *= degToRad
	lon2 *= degToRad
	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Agglomerate groups candidates into clusters. The seed of each cluster
// is the first unassigned candidate in canonical order; every unassigned
// candidate within RadiusM of the seed joins it. Groups smaller than
// MinSamples are dropped. Canonical ordering (timestamp, then latitude,
// longitude, cell) makes the result independent of input permutation.
func Agglomerate(cands []Candidate, cfg Config) []Cluster {
	if len(cands) == 0 {
		return nil
	}
	ordered := make([]Candidate, len(cands))
	copy(ordered, cands)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.TS.Equal(b.TS) {
			return a.TS.Before(b.TS)
		}
		if a.Lat != b.Lat {
			return a.Lat < b.Lat
		}
		if a.Lon != b.Lon {
			return a.Lon < b.Lon
		}
		return a.Cell < b.Cell
	})

	assigned := make([]bool, len(ordered))
	var clusters []Cluster
	for i := range ordered {
		if assigned[i] {
			continue
		}
		seed := ordered[i]
		var members []Candidate
		for j := i; j < len(ordered); j++ {
			if assigned[j] {
				continue
			}
			if HaversineM(seed.Lat, seed.Lon, ordered[j].Lat, ordered[j].Lon) <= cfg.RadiusM {
				assigned[j] = true
				members = append(members, ordered[j])
			}
		}
		if len(members) < cfg.MinSamples {
			continue
		}
		clusters = append(clusters, summarize(members))
	}
	return clusters
}

func summarize(members []Candidate) Cluster {
	var latSum, lonSum float64
	for _, m := range members {
		latSum += m.Lat
		lonSum += m.Lon
	}
	c := Cluster{
		CenterLat: latSum / float64(len(members)),
		CenterLon: lonSum / float64(len(members)),
		Count:     len(members),
		CellID:    modeCell(members),
		AvgRSRP:   meanOf(members, func(m Candidate) *float64 { return m.RSRP }),
		AvgRSRQ:   meanOf(members, func(m Candidate) *float64 { return m.RSRQ }),
		AvgSINR:   meanOf(members, func(m Candidate) *float64 { return m.SINR }),
	}
	for _, m := range members {
		if d := HaversineM(c.CenterLat, c.CenterLon, m.Lat, m.Lon); d > c.RadiusM {
			c.RadiusM = d
		}
	}
	return c
}

// modeCell returns the most frequent member cell, ties broken
// lexicographically. Empty cell IDs do not vote.
func modeCell(members []Candidate) string {
	counts := make(map[string]int)
	for _, m := range members {
		if m.Cell != "" {
			counts[m.Cell]++
		}
	}
	var top string
	best := 0
	for cell, n := range counts {
		if n > best || (n == best && (top == "" || cell < top)) {
			best = n
			top = cell
		}
	}
	return top
}

// meanOf averages the selected metric over the members that carry it,
// nil when none do.
func meanOf(members []Candidate, get func(Candidate) *float64) *float64 {
	var sum float64
	n := 0
	for _, m := range members {
		if v := get(m); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// Areas clusters candidates and converts the surviving clusters into
// problem areas of the given type. describe may be nil for the default
// description text.
func Areas(problemType string, cands []Candidate, cfg Config, grade Grader, describe func(Cluster) string) []model.ProblemArea {
	clusters := Agglomerate(cands, cfg)
	if len(clusters) == 0 {
		return nil
	}
	areas := make([]model.ProblemArea, 0, len(clusters))
	for _, c := range clusters {
		desc := ""
		if describe != nil {
			desc = describe(c)
		}
		if desc == "" {
			desc = fmt.Sprintf("%d affected samples within %.0f m", c.Count, math.Max(c.RadiusM, 1))
		}
		areas = append(areas, model.ProblemArea{
			Type:        problemType,
			CenterLat:   c.CenterLat,
			CenterLon:   c.CenterLon,
			RadiusM:     c.RadiusM,
			SampleCount: c.Count,
			CellID:      c.CellID,
			AvgRSRP:     c.AvgRSRP,
			AvgRSRQ:     c.AvgRSRQ,
			AvgSINR:     c.AvgSINR,
			Severity:    grade(c),
			Description: desc,
		})
	}
	return areas
}
