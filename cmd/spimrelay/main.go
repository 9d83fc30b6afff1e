// Command spimrelay watches a microscope acquisition directory and copies
// every image plane into an output directory under its canonical name.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mschirtzinger/spimrelay/internal/config"
	"github.com/mschirtzinger/spimrelay/internal/dashboard"
	"github.com/mschirtzinger/spimrelay/internal/journal"
	"github.com/mschirtzinger/spimrelay/internal/monitor"
	"github.com/mschirtzinger/spimrelay/internal/ui"
)

var (
	inputDir  string
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:   "spimrelay -i INPUT -o OUTPUT",
	Short: "Copy acquired image planes into canonically named files",
	Long: `Watch INPUT for image planes written by the acquisition software and copy
each one into OUTPUT under its canonical name.

Input files are expected to be named like
  _channel01_position0002_time0003_view0_z0004.tif
and are copied to
  timelapseID-20240808-111112_SPC-0002_TP-0003_ILL-0_CAM-0_CH-01_PL-0004-outOf-0001.tif

New files are picked up by filesystem events after a short settle delay.
A periodic scan catches anything the events missed, including files that
were already present at startup. Files whose names do not match are
reported and skipped.

Environment:
  SPIMRELAY_SETTLE_DELAY    wait after a create event (default 1s)
  SPIMRELAY_SCAN_INTERVAL   reconcile scan period (default 3s)
  SPIMRELAY_JOURNAL         journal database path, "off" to disable
  SPIMRELAY_DASHBOARD_PORT  WebSocket dashboard port (default 0, disabled)
  SPIMRELAY_LOG_FILE        also write logs to this rotated file

Press Ctrl+C to stop.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runWatch(ctx, inputDir, outputDir, cfg, cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory the acquisition software writes into")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory that receives the renamed copies")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")
}

// logWriter returns stderr, teed into a rotating file when one is configured.
func logWriter(stderr io.Writer, cfg *config.Config) (io.Writer, io.Closer) {
	if cfg.LogFile == "" {
		return stderr, nil
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return io.MultiWriter(stderr, file), file
}

// runWatch runs the monitor until ctx is cancelled.
func runWatch(ctx context.Context, input, output string, cfg *config.Config, stderr io.Writer) error {
	out, closer := logWriter(stderr, cfg)
	if closer != nil {
		defer closer.Close()
	}

	monitorConfig := monitor.DefaultConfig()
	monitorConfig.InputDir = input
	monitorConfig.OutputDir = output
	monitorConfig.SettleDelay = cfg.SettleDelay
	monitorConfig.ScanInterval = cfg.ScanInterval
	monitorConfig.Logger = log.New(out, "[monitor] ", log.LstdFlags)

	if cfg.JournalEnabled() {
		j, err := openJournal(cfg)
		if err != nil {
			fmt.Fprintf(stderr, "%s journal unavailable, continuing without it: %v\n", ui.RenderWarn("Warning:"), err)
		} else {
			defer j.Close()
			j.SetLogger(log.New(out, "[journal] ", log.LstdFlags))
			monitorConfig.Observers = append(monitorConfig.Observers, j)
		}
	}

	// The dashboard reads totals from the monitor, which does not exist yet
	var m *monitor.Monitor
	var server *dashboard.Server
	if cfg.DashboardEnabled() {
		dashLogger := log.New(out, "[dashboard] ", log.LstdFlags)
		server = dashboard.NewServer(&dashboard.Config{
			Host: "127.0.0.1",
			Port: cfg.DashboardPort,
			Stats: func() dashboard.StatsData {
				if m == nil {
					return dashboard.StatsData{}
				}
				s := m.Stats()
				return dashboard.StatsData{Copied: s.Copied, Failed: s.Failed, Tracked: s.Tracked}
			},
			Logger: dashLogger,
		})
		monitorConfig.Observers = append(monitorConfig.Observers, dashboard.NewHandler(server, dashLogger))
	}

	m, err := monitor.New(monitorConfig)
	if err != nil {
		return err
	}
	defer m.Close()

	if server != nil {
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}
		defer server.Stop()
		fmt.Fprintf(stderr, "Dashboard: %s\n", ui.RenderAccent("ws://"+server.GetAddr()+"/ws"))
	}

	fmt.Fprintf(stderr, "Watching %s, copying to %s\n", ui.RenderAccent(input), ui.RenderAccent(output))

	if err := m.Run(ctx); err != nil {
		return err
	}

	stats := m.Stats()
	fmt.Fprintf(stderr, "Stopped: %d copied, %d failed\n", stats.Copied, stats.Failed)
	return nil
}

func openJournal(cfg *config.Config) (*journal.Journal, error) {
	path := cfg.Journal
	if path == "" {
		var err error
		if path, err = journal.DefaultPath(); err != nil {
			return nil, err
		}
	}

	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	if err := j.InitSchema(); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
