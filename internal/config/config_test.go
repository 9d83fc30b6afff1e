package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", cfg.SettleDelay)
	}
	if cfg.ScanInterval != 3*time.Second {
		t.Errorf("ScanInterval = %v, want 3s", cfg.ScanInterval)
	}
	if !cfg.JournalEnabled() {
		t.Error("journal should be enabled by default")
	}
	if cfg.DashboardEnabled() {
		t.Error("dashboard should be disabled by default")
	}
}

func TestLoad_Env(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "go durations",
			env:  map[string]string{"SPIMRELAY_SETTLE_DELAY": "250ms", "SPIMRELAY_SCAN_INTERVAL": "10s"},
			check: func(t *testing.T, c *Config) {
				if c.SettleDelay != 250*time.Millisecond || c.ScanInterval != 10*time.Second {
					t.Errorf("got settle %v scan %v", c.SettleDelay, c.ScanInterval)
				}
			},
		},
		{
			name: "bare seconds",
			env:  map[string]string{"SPIMRELAY_SETTLE_DELAY": "1.5"},
			check: func(t *testing.T, c *Config) {
				if c.SettleDelay != 1500*time.Millisecond {
					t.Errorf("SettleDelay = %v", c.SettleDelay)
				}
			},
		},
		{
			name: "zero settle allowed",
			env:  map[string]string{"SPIMRELAY_SETTLE_DELAY": "0"},
			check: func(t *testing.T, c *Config) {
				if c.SettleDelay != 0 {
					t.Errorf("SettleDelay = %v", c.SettleDelay)
				}
			},
		},
		{
			name: "journal off",
			env:  map[string]string{"SPIMRELAY_JOURNAL": "OFF"},
			check: func(t *testing.T, c *Config) {
				if c.JournalEnabled() {
					t.Error("journal should be disabled")
				}
			},
		},
		{
			name: "journal path and dashboard",
			env:  map[string]string{"SPIMRELAY_JOURNAL": "/tmp/j.db", "SPIMRELAY_DASHBOARD_PORT": "9090", "SPIMRELAY_LOG_FILE": "/tmp/spimrelay.log"},
			check: func(t *testing.T, c *Config) {
				if c.Journal != "/tmp/j.db" || c.DashboardPort != 9090 || c.LogFile != "/tmp/spimrelay.log" {
					t.Errorf("got %+v", c)
				}
				if !c.DashboardEnabled() {
					t.Error("dashboard should be enabled")
				}
			},
		},
		{name: "huge seconds", env: map[string]string{"SPIMRELAY_SCAN_INTERVAL": "1e12"}, wantErr: true},
		{name: "infinite seconds", env: map[string]string{"SPIMRELAY_SCAN_INTERVAL": "Inf"}, wantErr: true},
		{name: "nan seconds", env: map[string]string{"SPIMRELAY_SETTLE_DELAY": "NaN"}, wantErr: true},
		{
			name: "largest whole seconds",
			env:  map[string]string{"SPIMRELAY_SCAN_INTERVAL": "9223372036"},
			check: func(t *testing.T, c *Config) {
				if c.ScanInterval <= 0 {
					t.Errorf("ScanInterval = %v, want positive", c.ScanInterval)
				}
			},
		},
		{name: "bad duration", env: map[string]string{"SPIMRELAY_SCAN_INTERVAL": "soon"}, wantErr: true},
		{name: "zero scan interval", env: map[string]string{"SPIMRELAY_SCAN_INTERVAL": "0s"}, wantErr: true},
		{name: "negative settle", env: map[string]string{"SPIMRELAY_SETTLE_DELAY": "-1s"}, wantErr: true},
		{name: "bad port", env: map[string]string{"SPIMRELAY_DASHBOARD_PORT": "http"}, wantErr: true},
		{name: "port out of range", env: map[string]string{"SPIMRELAY_DASHBOARD_PORT": "70000"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && strings.Contains(err.Error(), "must be positive, got -") {
				t.Errorf("overflowed value reached validation: %v", err)
			}
			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}
