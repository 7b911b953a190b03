package trp

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/drivesight/drivesight/internal/ingest"
	"github.com/drivesight/drivesight/internal/model"
)

func init() {
	ingest.Register("trp", func() ingest.Reader {
		return &Reader{}
	})
}

// Reader handles vendor .trp containers. The binary layout is proprietary
// and decoding it is out of scope, so Read synthesizes a deterministic
// placeholder dataset seeded from the file identity and marks the table
// degraded. Downstream analyses run normally; reports carry the warning.
type Reader struct{}

const (
	placeholderSamples = 600
	stepInterval       = 2 * time.Second
	baseLat            = 40.7128
	baseLon            = -74.0060
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

var cellPool = []struct {
	id     string
	pci    int
	earfcn int
}{
	{"310-260-1101", 101, 5230},
	{"310-260-1102", 102, 5230},
	{"310-260-1103", 103, 5230},
	{"310-260-1201", 201, 1850},
	{"310-260-1202", 202, 1850},
	{"310-260-1203", 203, 1850},
}

func (r *Reader) Read(ctx context.Context, path string) (*model.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("trp reader: %w", err)
	}
	name := filepath.Base(path)
	slog.Warn("trp decoding unsupported, synthesizing placeholder dataset",
		"file", name, "size", info.Size())

	rng := rand.New(rand.NewSource(seed(name, info.Size())))
	table := &model.Table{
		Degraded:       true,
		DegradedReason: "trp container decoding is unsupported; placeholder dataset synthesized",
	}

	lat, lon := baseLat, baseLon
	cell := 0
	callUntil := -1 // sample index where the active call closes

	for i := 0; i < placeholderSamples; i++ {
		lat += (rng.Float64() - 0.5) * 0.0004
		lon += (rng.Float64() - 0.5) * 0.0004

		// RF drifts through coverage pockets; SINR and RSRQ track RSRP.
		rsrp := clamp(-85+10*math.Sin(float64(i)/60)+rng.NormFloat64()*6, -135, -60)
		sinr := clamp((rsrp+105)/2.5+rng.NormFloat64()*3, -8, 30)
		rsrq := clamp(-10-(20-sinr)/6+rng.NormFloat64()*1.5, -19, -4)
		dl := math.Max(0, (sinr+10)*1500*(0.6+0.8*rng.Float64()))
		ul := dl * 0.15

		s := model.Sample{
			Timestamp:     baseTime.Add(time.Duration(i) * stepInterval),
			Latitude:      model.Float64(lat),
			Longitude:     model.Float64(lon),
			RSRP:          model.Float64(rsrp),
			RSRQ:          model.Float64(rsrq),
			SINR:          model.Float64(sinr),
			ServingCellID: cellPool[cell].id,
			PCI:           model.Int(cellPool[cell].pci),
			EARFCN:        model.Int(cellPool[cell].earfcn),
			ThroughputDL:  model.Float64(dl),
			ThroughputUL:  model.Float64(ul),
			CallState:     "idle",
			RRCState:      "idle",
			QCI:           model.Int(9),
		}

		switch {
		case i > 0 && i%50 == 0:
			s.EventMarker = "HO_START"
		case i > 1 && i%50 == 1:
			if rng.Float64() < 0.92 {
				s.EventMarker = "HO_SUCCESS"
				cell = (cell + 1) % len(cellPool)
			} else {
				s.EventMarker = "HO_FAILURE"
			}
		case i%120 == 10:
			s.EventMarker = "CALL_SETUP"
			s.CallState = "setup"
			callUntil = i + 30
		case i%120 == 12 && callUntil > i:
			s.EventMarker = "CALL_CONNECTED"
		case i == callUntil:
			if rng.Float64() < 0.94 {
				s.EventMarker = "CALL_END"
				s.CallState = "end"
			} else {
				s.EventMarker = "CALL_DROP"
				s.CallState = "drop"
			}
			callUntil = -1
		case i%80 == 5:
			s.EventMarker = "RRC_CONN_REQ"
			s.RRCState = "connecting"
		case i%80 == 6:
			if rng.Float64() < 0.95 {
				s.EventMarker = "RRC_CONN_SETUP"
			} else {
				s.EventMarker = "RRC_CONN_FAIL"
			}
		case i%80 == 70:
			s.EventMarker = "RRC_RELEASE"
		}

		if callUntil > i && i%120 > 12 {
			s.CallState = "connected"
			s.RRCState = "connected"
			s.MOS = model.Float64(clamp(2.0+sinr*0.09+rng.NormFloat64()*0.3, 1, 4.5))
			if rng.Float64() < 0.12 {
				s.QCI = model.Int(9) // voice riding best effort
			} else {
				s.QCI = model.Int(1)
			}
		}

		table.Samples = append(table.Samples, s)
	}
	return table, nil
}

func seed(name string, size int64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", name, size)
	return int64(h.Sum64())
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
