package monitor

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Reconciler periodically scans the input directory for files the event
// trigger missed: files written before startup, or whose notification was
// dropped.
type Reconciler struct {
	dir       string
	processed *ProcessedSet
	processor *Processor
	logger    *log.Logger
}

// NewReconciler creates a Reconciler for dir. Paths it dispatches are
// claimed in processed as absolute paths, matching FileWatcher events.
func NewReconciler(dir string, processed *ProcessedSet, processor *Processor, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Reconciler{
		dir:       dir,
		processed: processed,
		processor: processor,
		logger:    logger,
	}
}

// Run scans immediately and then once per interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	r.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reconciler) tick(ctx context.Context) {
	if _, err := r.Scan(ctx); err != nil {
		r.logger.Printf("Error scanning %s: %v", r.dir, err)
	}
}

type candidate struct {
	path    string
	modTime time.Time
}

// Scan dispatches every regular file in the directory that is not yet in
// the processed set, oldest modification time first. Each path is claimed
// before it is dispatched and stays claimed whatever the outcome. Scan
// returns the number of files dispatched.
func (r *Reconciler) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read input directory: %w", err)
	}

	var pending []candidate
	for _, entry := range entries {
		path := filepath.Join(r.dir, entry.Name())
		if r.processed.Contains(path) {
			continue
		}

		// Stat follows symlinks so a link to a regular file counts as one
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		pending = append(pending, candidate{path: path, modTime: info.ModTime()})
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].modTime.Equal(pending[j].modTime) {
			return pending[i].path < pending[j].path
		}
		return pending[i].modTime.Before(pending[j].modTime)
	})

	dispatched := 0
	for _, c := range pending {
		if ctx.Err() != nil {
			break
		}
		if !r.processed.Claim(c.path) {
			continue
		}
		// Failures are reported by the processor
		_, _ = r.processor.Process(c.path, TriggerReconcile)
		dispatched++
	}

	return dispatched, nil
}
