package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the monitor.
type Config struct {
	// InputDir is the directory the acquisition tool writes into.
	InputDir string

	// OutputDir receives the renamed copies. It is created if missing.
	OutputDir string

	// SettleDelay is how long a newly created file is left alone before it
	// is copied, so the writer can finish flushing it.
	SettleDelay time.Duration

	// ScanInterval is the period of the reconciling directory scan.
	ScanInterval time.Duration

	// Observers receive every processing result.
	Observers []Observer

	// Logger for monitor activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults. InputDir and OutputDir must be set
// by the caller.
func DefaultConfig() *Config {
	return &Config{
		SettleDelay:  time.Second,
		ScanInterval: 3 * time.Second,
		Logger:       log.New(os.Stderr, "[monitor] ", log.LstdFlags),
	}
}

// ErrAlreadyStarted is returned by Run when the monitor has already run.
var ErrAlreadyStarted = errors.New("monitor already started")

// Stats is a point-in-time summary of monitor activity.
type Stats struct {
	Copied  int64 `json:"copied"`
	Failed  int64 `json:"failed"`
	Tracked int   `json:"tracked"`
}

// Monitor wires the event trigger and the reconcile scan to one Processor
// and one ProcessedSet.
type Monitor struct {
	config    *Config
	inputDir  string
	outputDir string

	processed  *ProcessedSet
	processor  *Processor
	watcher    *FileWatcher
	reconciler *Reconciler

	settling sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// New validates the configuration and creates a Monitor.
//
// The input directory must exist. The output directory is created if needed
// and must differ from the input directory. Call Run to start monitoring, or
// Close to release resources without running.
func New(config *Config) (*Monitor, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.InputDir == "" {
		return nil, fmt.Errorf("input directory cannot be empty")
	}
	if config.OutputDir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if config.SettleDelay < 0 {
		return nil, fmt.Errorf("settle delay cannot be negative")
	}
	if config.ScanInterval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive")
	}
	if config.Logger == nil {
		config.Logger = DefaultConfig().Logger
	}

	inputDir, err := filepath.Abs(config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input directory: %w", err)
	}
	outputDir, err := filepath.Abs(config.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if inputDir == outputDir {
		return nil, fmt.Errorf("input and output directory must differ: %s", inputDir)
	}

	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", inputDir)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	watcher, err := NewFileWatcher()
	if err != nil {
		return nil, err
	}

	processed := NewProcessedSet()
	processor := NewProcessor(outputDir, config.Logger, config.Observers...)

	return &Monitor{
		config:     config,
		inputDir:   inputDir,
		outputDir:  outputDir,
		processed:  processed,
		processor:  processor,
		watcher:    watcher,
		reconciler: NewReconciler(inputDir, processed, processor, config.Logger),
	}, nil
}

// Run starts both triggers and blocks until ctx is cancelled. Files still
// settling at that point are abandoned before any copy starts.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	if err := m.watcher.Start(m.inputDir); err != nil {
		_ = m.watcher.Stop()
		return err
	}

	m.config.Logger.Printf("Watching %s, publishing to %s", m.inputDir, m.outputDir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m.watchFileEvents(gctx)
		return nil
	})
	g.Go(func() error {
		m.reconciler.Run(gctx, m.config.ScanInterval)
		return nil
	})

	err := g.Wait()

	m.config.Logger.Println("Stopping monitor")
	if stopErr := m.watcher.Stop(); stopErr != nil {
		m.config.Logger.Printf("Error closing watcher: %v", stopErr)
	}
	m.settling.Wait()
	m.config.Logger.Println("Monitor stopped")

	return err
}

// Close releases the file watcher of a monitor that was never run.
func (m *Monitor) Close() error {
	return m.watcher.Stop()
}

// Processed returns the set of paths dispatched so far.
func (m *Monitor) Processed() *ProcessedSet {
	return m.processed
}

// Stats returns counters for the current run.
func (m *Monitor) Stats() Stats {
	copied, failed := m.processor.Counts()
	return Stats{
		Copied:  copied,
		Failed:  failed,
		Tracked: m.processed.Len(),
	}
}

// watchFileEvents forwards creation events to settle-delayed dispatch.
func (m *Monitor) watchFileEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-m.watcher.Events():
			if !ok {
				return
			}
			m.dispatchAfterSettle(ctx, event.Path)

		case err, ok := <-m.watcher.Errors():
			if !ok {
				return
			}
			m.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

func (m *Monitor) dispatchAfterSettle(ctx context.Context, path string) {
	m.settling.Add(1)
	go func() {
		defer m.settling.Done()

		timer := time.NewTimer(m.config.SettleDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if _, err := m.processor.Process(path, TriggerEvent); err == nil {
			m.processed.Add(path)
		}
	}()
}
