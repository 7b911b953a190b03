package drivesight

type options struct {
	rsrp, rsrq, sinr float64
	radiusM          float64
	minSamples       int
	types            []string
	cells            []expectedCell
	handoverWindow   int
}

type expectedCell struct {
	cellID string
	pci    int
	earfcn int
}

// Option configures an Analyzer.
type Option func(*options)

// WithThresholds sets the RF classification boundaries: RSRP in dBm,
// RSRQ and SINR in dB. Defaults: -105, -15, 5.
func WithThresholds(rsrp, rsrq, sinr float64) Option {
	return func(o *options) {
		o.rsrp, o.rsrq, o.sinr = rsrp, rsrq, sinr
	}
}

// WithClustering sets the problem-area merge radius in meters and the
// minimum cluster size. Defaults: 100 m, 3 samples.
func WithClustering(radiusM float64, minSamples int) Option {
	return func(o *options) {
		o.radiusM = radiusM
		o.minSamples = minSamples
	}
}

// WithAnalyses restricts the run to the named analysis types. Names
// must come from Types(). Default: all.
func WithAnalyses(types ...string) Option {
	return func(o *options) {
		o.types = append([]string(nil), types...)
	}
}

// WithExpectedCell adds one cell's planned PCI and EARFCN to the
// reference used by the parameter-mismatch analysis.
func WithExpectedCell(cellID string, pci, earfcn int) Option {
	return func(o *options) {
		o.cells = append(o.cells, expectedCell{cellID: cellID, pci: pci, earfcn: earfcn})
	}
}

// WithHandoverWindow sets how many stable samples on a new cell confirm
// an unmarked handover as successful. Default: 3.
func WithHandoverWindow(samples int) Option {
	return func(o *options) {
		o.handoverWindow = samples
	}
}

func defaultOptions() options {
	return options{
		rsrp:       -105,
		rsrq:       -15,
		sinr:       5,
		radiusM:    100,
		minSamples: 3,
	}
}
