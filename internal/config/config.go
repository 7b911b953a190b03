package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/drivesight/drivesight/internal/model"
)

// Config holds all DriveSight configuration. Values load from defaults,
// then an optional YAML file, then environment overrides.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	Cluster    Cluster    `yaml:"cluster"`
	Throughput Throughput `yaml:"throughput"`
	Analyses   []string   `yaml:"analyses"` // selected analysis types; empty = all
	Cells      []CellRef  `yaml:"cells"`    // expected per-cell parameters
	DBPath     string     `yaml:"db_path"`  // empty = no persistence
	LogLevel   string     `yaml:"log_level"`
}

// Thresholds are the RF classification boundaries.
type Thresholds struct {
	RSRP float64 `yaml:"rsrp"` // dBm, valid -140..-70
	RSRQ float64 `yaml:"rsrq"` // dB, valid -20..0
	SINR float64 `yaml:"sinr"` // dB, valid -10..30
}

// Cluster controls the spatial problem-area clusterer.
type Cluster struct {
	RadiusM    float64 `yaml:"radius_m"`
	MinSamples int     `yaml:"min_samples"`
}

// Throughput holds the bottleneck floors.
type Throughput struct {
	DLFloorKbps float64 `yaml:"dl_floor_kbps"`
	ULFloorKbps float64 `yaml:"ul_floor_kbps"`
}

// CellRef is one row of the expected-cell reference used by the
// parameter-mismatch analysis.
type CellRef struct {
	CellID string `yaml:"cell_id"`
	PCI    int    `yaml:"pci"`
	EARFCN int    `yaml:"earfcn"`
}

// Threshold validity ranges.
const (
	MinRSRP, MaxRSRP = -140.0, -70.0
	MinRSRQ, MaxRSRQ = -20.0, 0.0
	MinSINR, MaxSINR = -10.0, 30.0
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Thresholds: Thresholds{RSRP: -105, RSRQ: -15, SINR: 5},
		Cluster:    Cluster{RadiusM: 100, MinSamples: 3},
		Throughput: Throughput{DLFloorKbps: 2000, ULFloorKbps: 512},
		LogLevel:   "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides, then
// validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Thresholds.RSRP = getenvFloat("DRIVESIGHT_RSRP_THRESHOLD", cfg.Thresholds.RSRP)
	cfg.Thresholds.RSRQ = getenvFloat("DRIVESIGHT_RSRQ_THRESHOLD", cfg.Thresholds.RSRQ)
	cfg.Thresholds.SINR = getenvFloat("DRIVESIGHT_SINR_THRESHOLD", cfg.Thresholds.SINR)
	cfg.Cluster.RadiusM = getenvFloat("DRIVESIGHT_CLUSTER_RADIUS_M", cfg.Cluster.RadiusM)
	cfg.Cluster.MinSamples = getenvInt("DRIVESIGHT_CLUSTER_MIN_SAMPLES", cfg.Cluster.MinSamples)
	cfg.DBPath = getenv("DRIVESIGHT_DB_PATH", cfg.DBPath)
	cfg.LogLevel = getenv("DRIVESIGHT_LOG_LEVEL", cfg.LogLevel)
}

// Validate checks thresholds against their valid ranges and the analysis
// selection against the closed vocabulary.
func (c *Config) Validate() error {
	if c.Thresholds.RSRP < MinRSRP || c.Thresholds.RSRP > MaxRSRP {
		return fmt.Errorf("config: rsrp threshold %.1f outside %g..%g", c.Thresholds.RSRP, MinRSRP, MaxRSRP)
	}
	if c.Thresholds.RSRQ < MinRSRQ || c.Thresholds.RSRQ > MaxRSRQ {
		return fmt.Errorf("config: rsrq threshold %.1f outside %g..%g", c.Thresholds.RSRQ, MinRSRQ, MaxRSRQ)
	}
	if c.Thresholds.SINR < MinSINR || c.Thresholds.SINR > MaxSINR {
		return fmt.Errorf("config: sinr threshold %.1f outside %g..%g", c.Thresholds.SINR, MinSINR, MaxSINR)
	}
	if c.Cluster.RadiusM <= 0 {
		return fmt.Errorf("config: cluster radius must be positive, got %g", c.Cluster.RadiusM)
	}
	if c.Cluster.MinSamples < 1 {
		return fmt.Errorf("config: cluster min samples must be >= 1, got %d", c.Cluster.MinSamples)
	}
	if c.Throughput.DLFloorKbps <= 0 || c.Throughput.ULFloorKbps <= 0 {
		return fmt.Errorf("config: throughput floors must be positive")
	}
	for _, name := range c.Analyses {
		if !model.ValidType(name) {
			return fmt.Errorf("config: unknown analysis type %q", name)
		}
	}
	seen := make(map[string]bool, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.CellID == "" {
			return fmt.Errorf("config: cell reference with empty cell_id")
		}
		if seen[cell.CellID] {
			return fmt.Errorf("config: duplicate cell reference %q", cell.CellID)
		}
		seen[cell.CellID] = true
	}
	return nil
}

// Selected returns the analysis types to run: the configured selection,
// or the full vocabulary in canonical order when none is configured.
func (c *Config) Selected() []string {
	if len(c.Analyses) == 0 {
		return model.AllTypes()
	}
	return c.Analyses
}

// CellByID returns the expected parameters for a cell, if referenced.
func (c *Config) CellByID(id string) (CellRef, bool) {
	for _, cell := range c.Cells {
		if cell.CellID == id {
			return cell, true
		}
	}
	return CellRef{}, false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
