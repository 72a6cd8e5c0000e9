package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 8480 {
		t.Errorf("api defaults = %s:%d", cfg.API.Host, cfg.API.Port)
	}
	if cfg.Fees.EscrowBps != 250 || cfg.Fees.PlatformBps != 1000 || cfg.Fees.MinOfferBps != 5000 {
		t.Errorf("fee defaults = %+v", cfg.Fees)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should default on")
	}
	if cfg.Sweep.Enabled {
		t.Error("sweeper should default off")
	}
}

func TestEngineConfigParsesWindows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Deadlines.Payment = "12h"
	cfg.Deadlines.Verification = "" // empty falls back to the default

	ec, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("engine config: %v", err)
	}
	if ec.PaymentWindow != 12*time.Hour {
		t.Errorf("payment window = %v", ec.PaymentWindow)
	}
	if ec.VerificationWindow != 72*time.Hour {
		t.Errorf("verification window = %v", ec.VerificationWindow)
	}
	if ec.EscrowFeeBps != 250 || ec.ProcessingFeeFlat != 30 {
		t.Errorf("fee rates not carried over: %+v", ec)
	}
}

func TestEngineConfigRejectsBadWindows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unparseable", func(c *Config) { c.Deadlines.Payment = "two days" }},
		{"zero", func(c *Config) { c.Deadlines.Credential = "0s" }},
		{"negative", func(c *Config) { c.Deadlines.OfferTTL = "-1h" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := cfg.EngineConfig(); err == nil {
				t.Error("bad window must be rejected")
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HANDLESWAP_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 8480 {
		t.Errorf("port = %d, want default", cfg.API.Port)
	}
}

func TestLoadParsesConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HANDLESWAP_HOME", home)

	content := `
[api]
host = "0.0.0.0"
port = 9000

[fees]
escrow_bps = 300

[sweep]
enabled = true
interval = "30s"
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Host != "0.0.0.0" || cfg.API.Port != 9000 {
		t.Errorf("api = %s:%d", cfg.API.Host, cfg.API.Port)
	}
	if cfg.Fees.EscrowBps != 300 {
		t.Errorf("escrow bps = %d", cfg.Fees.EscrowBps)
	}
	// Values the file omits keep their defaults.
	if cfg.Fees.PlatformBps != 1000 {
		t.Errorf("platform bps = %d, want default 1000", cfg.Fees.PlatformBps)
	}
	if !cfg.Sweep.Enabled || cfg.SweepInterval() != 30*time.Second {
		t.Errorf("sweep = %+v interval %v", cfg.Sweep, cfg.SweepInterval())
	}
}

func TestDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HANDLESWAP_HOME", home)

	cfg := DefaultConfig()
	if got := cfg.DataDir(); got != filepath.Join(home, "data") {
		t.Errorf("DataDir = %s", got)
	}
	cfg.Storage.Dir = "/var/lib/handleswap"
	if got := cfg.DataDir(); got != "/var/lib/handleswap" {
		t.Errorf("DataDir override = %s", got)
	}
}
