// Package config loads spimrelay settings from SPIMRELAY_* environment
// variables.
//
// The input and output directories are command-line flags. Everything here
// is tuning that has a sensible default:
//
//	SPIMRELAY_SETTLE_DELAY    wait after a create event (default 1s)
//	SPIMRELAY_SCAN_INTERVAL   reconcile scan period (default 3s)
//	SPIMRELAY_JOURNAL         journal database path, "off" to disable
//	SPIMRELAY_DASHBOARD_PORT  WebSocket dashboard port, 0 to disable
//	SPIMRELAY_LOG_FILE        also write logs to this rotated file
//
// Durations take Go syntax ("500ms", "2s") or a bare number of seconds.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every setting name.
const EnvPrefix = "SPIMRELAY"

// JournalOff disables the journal when used as the journal path.
const JournalOff = "off"

const (
	keySettleDelay   = "settle_delay"
	keyScanInterval  = "scan_interval"
	keyJournal       = "journal"
	keyDashboardPort = "dashboard_port"
	keyLogFile       = "log_file"
)

// Config holds the environment-driven settings.
type Config struct {
	SettleDelay   time.Duration
	ScanInterval  time.Duration
	Journal       string // empty means the default location
	DashboardPort int
	LogFile       string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SettleDelay:  1 * time.Second,
		ScanInterval: 3 * time.Second,
	}
}

// JournalEnabled reports whether results should be recorded.
func (c *Config) JournalEnabled() bool {
	return !strings.EqualFold(c.Journal, JournalOff)
}

// DashboardEnabled reports whether the WebSocket dashboard should start.
func (c *Config) DashboardEnabled() bool {
	return c.DashboardPort != 0
}

// Load reads the environment on top of DefaultConfig.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	def := DefaultConfig()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keySettleDelay, def.SettleDelay.String())
	v.SetDefault(keyScanInterval, def.ScanInterval.String())
	v.SetDefault(keyJournal, "")
	v.SetDefault(keyDashboardPort, 0)
	v.SetDefault(keyLogFile, "")

	settle, err := parseDuration(keySettleDelay, v.GetString(keySettleDelay))
	if err != nil {
		return nil, err
	}
	scan, err := parseDuration(keyScanInterval, v.GetString(keyScanInterval))
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(strings.TrimSpace(v.GetString(keyDashboardPort)))
	if err != nil {
		return nil, fmt.Errorf("invalid %s_%s: %w", EnvPrefix, strings.ToUpper(keyDashboardPort), err)
	}

	cfg := &Config{
		SettleDelay:   settle,
		ScanInterval:  scan,
		Journal:       strings.TrimSpace(v.GetString(keyJournal)),
		DashboardPort: port,
		LogFile:       strings.TrimSpace(v.GetString(keyLogFile)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %v", c.SettleDelay)
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %v", c.ScanInterval)
	}
	if c.DashboardPort < 0 || c.DashboardPort > 65535 {
		return fmt.Errorf("dashboard port out of range: %d", c.DashboardPort)
	}
	return nil
}

// maxSeconds is the largest bare number of seconds a time.Duration holds.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > maxSeconds {
			return 0, fmt.Errorf("invalid %s_%s: %q out of range", EnvPrefix, strings.ToUpper(key), raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
	}
	return d, nil
}
