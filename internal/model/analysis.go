package model

// Analysis type names form the closed vocabulary accepted by the engine
// and recorded with every stored report.
const (
	TypeCoverage     = "Coverage Problems"
	TypeInterference = "Interference"
	TypeHandover     = "Handover Failures"
	TypeThroughput   = "Throughput Bottlenecks"
	TypeCallDrops    = "Call Drops"
	TypeOverload     = "Cell Overloading"
	TypeParams       = "Parameter Mismatches"
	TypeQoS          = "QoS Issues"
	TypeRFMetrics    = "RF Metrics (RSRP, RSRQ, SINR)"
	TypeIdleConn     = "Idle/Connected Mode Failures"
)

// AllTypes returns the analysis-type vocabulary in canonical order. The
// order fixes result merging and report layout.
func AllTypes() []string {
	return []string{
		TypeCoverage,
		TypeInterference,
		TypeHandover,
		TypeThroughput,
		TypeCallDrops,
		TypeOverload,
		TypeParams,
		TypeQoS,
		TypeRFMetrics,
		TypeIdleConn,
	}
}

// ValidType reports whether name is part of the closed vocabulary.
func ValidType(name string) bool {
	for _, t := range AllTypes() {
		if t == name {
			return true
		}
	}
	return false
}

// Severity levels for problem areas and findings.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// ProblemArea is a geographic cluster of degraded samples.
type ProblemArea struct {
	Type        string   `json:"type"`
	CenterLat   float64  `json:"center_lat"`
	CenterLon   float64  `json:"center_lon"`
	RadiusM     float64  `json:"radius_m"` // max member distance from centroid
	SampleCount int      `json:"sample_count"`
	CellID      string   `json:"cell_id,omitempty"` // mode of member serving cells
	AvgRSRP     *float64 `json:"avg_rsrp,omitempty"`
	AvgRSRQ     *float64 `json:"avg_rsrq,omitempty"`
	AvgSINR     *float64 `json:"avg_sinr,omitempty"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
}

// Result holds the outcome of one analysis type over one table.
type Result struct {
	Type   string             `json:"type"`
	KPIs   map[string]float64 `json:"kpis"`
	Counts map[string]int     `json:"counts,omitempty"` // cause and category tallies
	Areas  []ProblemArea      `json:"areas,omitempty"`
	Events []Event            `json:"events,omitempty"`
	Note   string             `json:"note,omitempty"` // empty or degraded input explanation
}

// NewResult returns a Result for the given type with initialized maps.
func NewResult(typ string) *Result {
	return &Result{
		Type:   typ,
		KPIs:   make(map[string]float64),
		Counts: make(map[string]int),
	}
}

// KPI returns the named KPI, or 0 when absent.
func (r *Result) KPI(name string) float64 { return r.KPIs[name] }

// Finding is a root-cause diagnosis produced from merged results.
type Finding struct {
	Issue          string `json:"issue"`
	Severity       string `json:"severity"` // High or Medium
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}
