package events

import "github.com/drivesight/drivesight/internal/model"

// Failure and drop cause labels form a closed vocabulary;
// unclassifiable failures fall through to CauseOther.
const (
	CauseMissingNeighbor = "missing_neighbor"
	CauseWeakCoverage    = "weak_coverage"
	CauseInterference    = "interference"
	CauseOther           = "other"
)

// Attribution floors. RF below these at resolution time implicates the
// radio conditions rather than configuration or load.
const (
	weakCoverageRSRP = -110.0 // dBm
	interferenceSINR = 0.0    // dB
)

// CauseContext is the sample context at the moment a failure or drop
// resolves.
type CauseContext struct {
	RSRP        *float64
	SINR        *float64
	TargetKnown bool // handover target cell was ever observed
}

func contextAt(s *model.Sample, targetKnown bool) CauseContext {
	return CauseContext{RSRP: s.RSRP, SINR: s.SINR, TargetKnown: targetKnown}
}

// causeRule maps a context condition to a cause label. Rules are
// evaluated in order; the first match wins.
type causeRule struct {
	label string
	match func(CauseContext) bool
}

var handoverCauses = []causeRule{
	{CauseMissingNeighbor, func(c CauseContext) bool { return !c.TargetKnown }},
	{CauseWeakCoverage, func(c CauseContext) bool { return c.RSRP != nil && *c.RSRP < weakCoverageRSRP }},
	{CauseInterference, func(c CauseContext) bool { return c.SINR != nil && *c.SINR < interferenceSINR }},
}

var dropCauses = []causeRule{
	{CauseWeakCoverage, func(c CauseContext) bool { return c.RSRP != nil && *c.RSRP < weakCoverageRSRP }},
	{CauseInterference, func(c CauseContext) bool { return c.SINR != nil && *c.SINR < interferenceSINR }},
}

// classifyCause runs the rule table over the context.
func classifyCause(rules []causeRule, ctx CauseContext) string {
	for _, r := range rules {
		if r.match(ctx) {
			return r.label
		}
	}
	return CauseOther
}
