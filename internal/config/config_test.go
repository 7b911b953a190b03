package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drivesight/drivesight/internal/model"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DRIVESIGHT_RSRP_THRESHOLD", "DRIVESIGHT_RSRQ_THRESHOLD",
		"DRIVESIGHT_SINR_THRESHOLD", "DRIVESIGHT_CLUSTER_RADIUS_M",
		"DRIVESIGHT_CLUSTER_MIN_SAMPLES", "DRIVESIGHT_DB_PATH",
		"DRIVESIGHT_LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Thresholds.RSRP != -105 || cfg.Thresholds.RSRQ != -15 || cfg.Thresholds.SINR != 5 {
		t.Fatalf("unexpected default thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Cluster.RadiusM != 100 || cfg.Cluster.MinSamples != 3 {
		t.Fatalf("unexpected default cluster settings: %+v", cfg.Cluster)
	}
	if cfg.Throughput.DLFloorKbps != 2000 || cfg.Throughput.ULFloorKbps != 512 {
		t.Fatalf("unexpected default floors: %+v", cfg.Throughput)
	}
	if cfg.DBPath != "" {
		t.Fatalf("expected empty default DBPath, got %q", cfg.DBPath)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "drivesight.yaml")
	doc := `thresholds:
  rsrp: -110
cluster:
  radius_m: 250
analyses:
  - "Coverage Problems"
  - "Call Drops"
cells:
  - cell_id: "310-410-1001"
    pci: 42
    earfcn: 5230
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Thresholds.RSRP != -110 {
		t.Fatalf("expected rsrp -110 from file, got %g", cfg.Thresholds.RSRP)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Thresholds.RSRQ != -15 {
		t.Fatalf("expected rsrq default -15, got %g", cfg.Thresholds.RSRQ)
	}
	if cfg.Cluster.RadiusM != 250 || cfg.Cluster.MinSamples != 3 {
		t.Fatalf("unexpected cluster settings: %+v", cfg.Cluster)
	}
	if len(cfg.Analyses) != 2 || cfg.Analyses[0] != model.TypeCoverage || cfg.Analyses[1] != model.TypeCallDrops {
		t.Fatalf("unexpected analyses: %v", cfg.Analyses)
	}
	ref, ok := cfg.CellByID("310-410-1001")
	if !ok || ref.PCI != 42 || ref.EARFCN != 5230 {
		t.Fatalf("unexpected cell reference: %+v (ok=%v)", ref, ok)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load("/nonexistent/drivesight.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "drivesight.yaml")
	if err := os.WriteFile(path, []byte("thresholds:\n  rsrp: -110\n"), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("DRIVESIGHT_RSRP_THRESHOLD", "-98.5")
	os.Setenv("DRIVESIGHT_CLUSTER_MIN_SAMPLES", "5")
	defer os.Unsetenv("DRIVESIGHT_RSRP_THRESHOLD")
	defer os.Unsetenv("DRIVESIGHT_CLUSTER_MIN_SAMPLES")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Thresholds.RSRP != -98.5 {
		t.Fatalf("expected env to win over file, got rsrp %g", cfg.Thresholds.RSRP)
	}
	if cfg.Cluster.MinSamples != 5 {
		t.Fatalf("expected min samples 5, got %d", cfg.Cluster.MinSamples)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected nil error for default config, got: %v", err)
	}
}

func TestValidate_BadThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"rsrp too low", func(c *Config) { c.Thresholds.RSRP = -150 }, "rsrp"},
		{"rsrp too high", func(c *Config) { c.Thresholds.RSRP = -60 }, "rsrp"},
		{"rsrq positive", func(c *Config) { c.Thresholds.RSRQ = 1 }, "rsrq"},
		{"sinr too high", func(c *Config) { c.Thresholds.SINR = 35 }, "sinr"},
		{"zero radius", func(c *Config) { c.Cluster.RadiusM = 0 }, "radius"},
		{"zero min samples", func(c *Config) { c.Cluster.MinSamples = 0 }, "min samples"},
		{"negative floor", func(c *Config) { c.Throughput.DLFloorKbps = -1 }, "floor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_UnknownAnalysis(t *testing.T) {
	cfg := Default()
	cfg.Analyses = []string{"Jitter Analysis"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown analysis type")
	}
	if !strings.Contains(err.Error(), "Jitter Analysis") {
		t.Fatalf("expected error to name the bad type, got: %v", err)
	}
}

func TestValidate_CellReference(t *testing.T) {
	cfg := Default()
	cfg.Cells = []CellRef{{CellID: "", PCI: 1}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty cell_id")
	}

	cfg = Default()
	cfg.Cells = []CellRef{{CellID: "a", PCI: 1}, {CellID: "a", PCI: 2}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate cell_id")
	}
}

func TestSelected(t *testing.T) {
	cfg := Default()
	if got := cfg.Selected(); len(got) != len(model.AllTypes()) {
		t.Fatalf("expected full vocabulary, got %d types", len(got))
	}
	cfg.Analyses = []string{model.TypeHandover}
	got := cfg.Selected()
	if len(got) != 1 || got[0] != model.TypeHandover {
		t.Fatalf("unexpected selection: %v", got)
	}
}

func TestGetenvFloat(t *testing.T) {
	tests := []struct {
		name     string
		envVal   string
		set      bool
		fallback float64
		want     float64
	}{
		{"unset uses fallback", "", false, -105, -105},
		{"valid float", "-99.5", true, -105, -99.5},
		{"invalid falls back", "abc", true, -105, -105},
	}

	const key = "DRIVESIGHT_TEST_GETENVFLOAT"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}
			got := getenvFloat(key, tt.fallback)
			if got != tt.want {
				t.Errorf("getenvFloat(%q, %g) = %g, want %g", tt.envVal, tt.fallback, got, tt.want)
			}
		})
	}
}
