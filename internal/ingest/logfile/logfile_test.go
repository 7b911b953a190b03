package logfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drive.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadKeyValueLines(t *testing.T) {
	path := writeFixture(t, `# drive test export
2024-03-01 10:00:00.125 rsrp=-101.2 sinr=3.2 cell_id=310-410-23 event=ho_start vendor_tag=x

2024-03-01 10:00:01.125 rsrp=-102.0 call_state=Connected
`)

	tbl, err := (&Reader{}).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(tbl.Samples))
	}

	s := tbl.Samples[0]
	want := time.Date(2024, 3, 1, 10, 0, 0, 125e6, time.UTC)
	if !s.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", s.Timestamp, want)
	}
	if s.RSRP == nil || *s.RSRP != -101.2 {
		t.Errorf("RSRP = %v, want -101.2", s.RSRP)
	}
	if s.ServingCellID != "310-410-23" {
		t.Errorf("ServingCellID = %q", s.ServingCellID)
	}
	if s.EventMarker != "HO_START" {
		t.Errorf("EventMarker = %q, want HO_START", s.EventMarker)
	}
	if tbl.Samples[1].CallState != "connected" {
		t.Errorf("CallState = %q, want connected", tbl.Samples[1].CallState)
	}
	if tbl.Anomalies != 0 {
		t.Fatalf("Anomalies = %d, want 0", tbl.Anomalies)
	}
}

func TestReadCountsBadLines(t *testing.T) {
	path := writeFixture(t, "garbage without pairs\n"+
		"2024-03-01 10:00:00 rsrp=-100\n"+
		"not-a-time rsrp=-101\n"+
		"2024-03-01 10:00:02 rsrp=oops\n")

	tbl, err := (&Reader{}).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tbl.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(tbl.Samples))
	}
	if tbl.Samples[1].RSRP != nil {
		t.Error("malformed value assigned a field")
	}
	if tbl.Anomalies != 3 {
		t.Fatalf("Anomalies = %d, want 3", tbl.Anomalies)
	}
}
