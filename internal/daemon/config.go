// Package daemon wires configuration, storage, the escrow engine, and the
// HTTP API into a runnable service.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/handleswap/handleswap/internal/app/escrow"
)

// ─── Configuration ──────────────────────────────────────────────────────────
// Loaded from ~/.handleswap/config.toml (HANDLESWAP_HOME overrides the
// directory). Every value has a default; a missing file is not an error.

// Config is the top-level daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Fees      FeesConfig      `toml:"fees"`
	Deadlines DeadlinesConfig `toml:"deadlines"`
	Storage   StorageConfig   `toml:"storage"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Sweep     SweepConfig     `toml:"sweep"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// FeesConfig holds the fee schedule in basis points (flat fees in cents).
type FeesConfig struct {
	EscrowBps      int64 `toml:"escrow_bps"`
	ProcessingBps  int64 `toml:"processing_bps"`
	ProcessingFlat int64 `toml:"processing_flat"`
	PlatformBps    int64 `toml:"platform_bps"`
	MinOfferBps    int64 `toml:"min_offer_bps"`
}

// DeadlinesConfig holds the escrow deadline windows as duration strings.
type DeadlinesConfig struct {
	OfferTTL     string `toml:"offer_ttl"`
	Payment      string `toml:"payment"`
	Credential   string `toml:"credential"`
	Verification string `toml:"verification"`
}

// StorageConfig controls where the SQLite database lives.
type StorageConfig struct {
	Dir string `toml:"dir"` // Empty = <home>/data
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// SweepConfig controls the optional background deadline sweeper.
type SweepConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{Host: "127.0.0.1", Port: 8480},
		Fees: FeesConfig{
			EscrowBps:      250,
			ProcessingBps:  290,
			ProcessingFlat: 30,
			PlatformBps:    1000,
			MinOfferBps:    5000,
		},
		Deadlines: DeadlinesConfig{
			OfferTTL:     "48h",
			Payment:      "24h",
			Credential:   "48h",
			Verification: "72h",
		},
		Metrics: MetricsConfig{Enabled: true},
		Sweep:   SweepConfig{Enabled: false, Interval: "1m"},
	}
}

// Home returns the HandleSwap home directory.
func Home() string {
	if env := os.Getenv("HANDLESWAP_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".handleswap")
}

// Load reads the config file under the home directory, applying defaults
// for anything unset. A missing file returns the defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(Home(), "config.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// DataDir returns the directory the SQLite database lives in.
func (c Config) DataDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(Home(), "data")
}

// EngineConfig converts the TOML config into the engine's configuration.
func (c Config) EngineConfig() (escrow.Config, error) {
	ec := escrow.Config{
		EscrowFeeBps:      c.Fees.EscrowBps,
		ProcessingFeeBps:  c.Fees.ProcessingBps,
		ProcessingFeeFlat: c.Fees.ProcessingFlat,
		PlatformFeeBps:    c.Fees.PlatformBps,
		MinOfferBps:       c.Fees.MinOfferBps,
	}
	var err error
	if ec.OfferTTL, err = parseWindow(c.Deadlines.OfferTTL, 48*time.Hour); err != nil {
		return ec, fmt.Errorf("deadlines.offer_ttl: %w", err)
	}
	if ec.PaymentWindow, err = parseWindow(c.Deadlines.Payment, 24*time.Hour); err != nil {
		return ec, fmt.Errorf("deadlines.payment: %w", err)
	}
	if ec.CredentialWindow, err = parseWindow(c.Deadlines.Credential, 48*time.Hour); err != nil {
		return ec, fmt.Errorf("deadlines.credential: %w", err)
	}
	if ec.VerificationWindow, err = parseWindow(c.Deadlines.Verification, 72*time.Hour); err != nil {
		return ec, fmt.Errorf("deadlines.verification: %w", err)
	}
	return ec, nil
}

// SweepInterval parses the sweeper interval.
func (c Config) SweepInterval() time.Duration {
	d, err := parseWindow(c.Sweep.Interval, time.Minute)
	if err != nil {
		return time.Minute
	}
	return d
}

func parseWindow(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("window must be positive, got %s", s)
	}
	return d, nil
}
