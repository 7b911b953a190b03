package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/drivesight/drivesight/internal/model"
)

// Field identifies one sample attribute in an input file. Readers resolve
// their column headers or key tokens to Fields and assign values through
// Set, so every format shares one parsing vocabulary.
type Field int

const (
	FieldTimestamp Field = iota
	FieldLatitude
	FieldLongitude
	FieldRSRP
	FieldRSRQ
	FieldSINR
	FieldCellID
	FieldPCI
	FieldEARFCN
	FieldThroughputDL
	FieldThroughputUL
	FieldCallState
	FieldRRCState
	FieldEventMarker
	FieldMOS
	FieldQCI
)

// Header and key aliases seen across tool exports.
var aliases = map[string]Field{
	"timestamp": FieldTimestamp,
	"time":      FieldTimestamp,
	"datetime":  FieldTimestamp,
	"date_time": FieldTimestamp,

	"lat":       FieldLatitude,
	"latitude":  FieldLatitude,
	"lon":       FieldLongitude,
	"lng":       FieldLongitude,
	"long":      FieldLongitude,
	"longitude": FieldLongitude,

	"rsrp":         FieldRSRP,
	"rsrp_dbm":     FieldRSRP,
	"serving_rsrp": FieldRSRP,
	"rsrq":         FieldRSRQ,
	"rsrq_db":      FieldRSRQ,
	"serving_rsrq": FieldRSRQ,
	"sinr":         FieldSINR,
	"sinr_db":      FieldSINR,
	"snr":          FieldSINR,

	"cell_id":         FieldCellID,
	"cellid":          FieldCellID,
	"serving_cell":    FieldCellID,
	"serving_cell_id": FieldCellID,
	"eci":             FieldCellID,

	"pci":          FieldPCI,
	"phys_cell_id": FieldPCI,
	"earfcn":       FieldEARFCN,
	"dl_earfcn":    FieldEARFCN,

	"throughput_dl":    FieldThroughputDL,
	"dl_throughput":    FieldThroughputDL,
	"dl_tput":          FieldThroughputDL,
	"pdsch_throughput": FieldThroughputDL,
	"throughput_ul":    FieldThroughputUL,
	"ul_throughput":    FieldThroughputUL,
	"ul_tput":          FieldThroughputUL,
	"pusch_throughput": FieldThroughputUL,

	"call_state":  FieldCallState,
	"call_status": FieldCallState,
	"rrc_state":   FieldRRCState,
	"rrc":         FieldRRCState,

	"event":        FieldEventMarker,
	"event_marker": FieldEventMarker,
	"event_type":   FieldEventMarker,

	"mos":       FieldMOS,
	"volte_mos": FieldMOS,
	"qci":       FieldQCI,
}

// CanonicalField resolves a header or key token to its Field. Matching is
// case-insensitive and ignores unit suffixes like "RSRP (dBm)".
func CanonicalField(name string) (Field, bool) {
	f, ok := aliases[normalizeName(name)]
	return f, ok
}

func normalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// Set parses raw and assigns the field on s. Empty values are a no-op.
// Timestamps are parsed by the readers themselves; Set rejects them.
func (f Field) Set(s *model.Sample, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch f {
	case FieldTimestamp:
		return fmt.Errorf("%w: timestamp assigned through Set", model.ErrMalformedRecord)
	case FieldLatitude:
		return setFloat(&s.Latitude, raw)
	case FieldLongitude:
		return setFloat(&s.Longitude, raw)
	case FieldRSRP:
		return setFloat(&s.RSRP, raw)
	case FieldRSRQ:
		return setFloat(&s.RSRQ, raw)
	case FieldSINR:
		return setFloat(&s.SINR, raw)
	case FieldCellID:
		s.ServingCellID = raw
	case FieldPCI:
		return setInt(&s.PCI, raw)
	case FieldEARFCN:
		return setInt(&s.EARFCN, raw)
	case FieldThroughputDL:
		return setFloat(&s.ThroughputDL, raw)
	case FieldThroughputUL:
		return setFloat(&s.ThroughputUL, raw)
	case FieldCallState:
		s.CallState = strings.ToLower(raw)
	case FieldRRCState:
		s.RRCState = strings.ToLower(raw)
	case FieldEventMarker:
		s.EventMarker = strings.ToUpper(raw)
	case FieldMOS:
		return setFloat(&s.MOS, raw)
	case FieldQCI:
		return setInt(&s.QCI, raw)
	}
	return nil
}

func setFloat(dst **float64, raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", model.ErrMalformedRecord, raw)
	}
	*dst = &v
	return nil
}

func setInt(dst **int, raw string) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer", model.ErrMalformedRecord, raw)
	}
	*dst = &v
	return nil
}

// Timestamp layouts seen across tool exports, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"02-Jan-2006 15:04:05.000",
	"02-Jan-2006 15:04:05",
	"2006/01/02 15:04:05",
}

// ParseTimestamp parses a timestamp token: a known layout, or unix
// seconds/milliseconds. Layout times without a zone are taken as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", model.ErrMalformedRecord)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		switch {
		case n >= 1e12: // milliseconds
			return time.UnixMilli(n).UTC(), nil
		case n >= 1e9: // seconds
			return time.Unix(n, 0).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", model.ErrMalformedRecord, raw)
}
