// Package tuning holds the engine's operational knobs: capacity bounds and
// pacing, not economic policy. Policy constants (tax brackets, UBI cap,
// maintenance cost) are fixed in the economy package.
package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning configures the driver and engine.
type Tuning struct {
	LedgerCap       int    `yaml:"ledger_cap"`
	TickIntervalMs  int    `yaml:"tick_interval_ms"`
	WeatherSeed     int64  `yaml:"weather_seed"`
	DBPath          string `yaml:"db_path"`
	APIPort         int    `yaml:"api_port"`
	IngestWindowSec int    `yaml:"ingest_window_sec"` // rate-limit window for the action ingest endpoint
	IngestMax       int    `yaml:"ingest_max"`        // max ingest requests per window per IP
}

// Defaults returns the stock configuration.
func Defaults() Tuning {
	return Tuning{
		LedgerCap:       2000,
		TickIntervalMs:  1000,
		WeatherSeed:     42,
		DBPath:          "data/sparkworld.db",
		APIPort:         8080,
		IngestWindowSec: 60,
		IngestMax:       120,
	}
}

// Load reads a yaml tuning file over the defaults. Zero-valued fields in the
// file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	var overlay Tuning
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return t, fmt.Errorf("tuning file %s: %w", path, err)
	}
	if overlay.LedgerCap > 0 {
		t.LedgerCap = overlay.LedgerCap
	}
	if overlay.TickIntervalMs > 0 {
		t.TickIntervalMs = overlay.TickIntervalMs
	}
	if overlay.WeatherSeed != 0 {
		t.WeatherSeed = overlay.WeatherSeed
	}
	if overlay.DBPath != "" {
		t.DBPath = overlay.DBPath
	}
	if overlay.APIPort > 0 {
		t.APIPort = overlay.APIPort
	}
	if overlay.IngestWindowSec > 0 {
		t.IngestWindowSec = overlay.IngestWindowSec
	}
	if overlay.IngestMax > 0 {
		t.IngestMax = overlay.IngestMax
	}
	return t, nil
}

// TickInterval returns the tick pacing as a duration.
func (t Tuning) TickInterval() time.Duration {
	return time.Duration(t.TickIntervalMs) * time.Millisecond
}
