package monitor

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mschirtzinger/spimrelay/internal/naming"
)

// Trigger identifies which activity dispatched a file.
type Trigger string

const (
	// TriggerEvent marks a dispatch caused by a filesystem creation event.
	TriggerEvent Trigger = "event"
	// TriggerReconcile marks a dispatch made by the periodic scan.
	TriggerReconcile Trigger = "reconcile"
)

// Result describes the outcome of processing one file.
type Result struct {
	// Source is the absolute path of the input file.
	Source string
	// Destination is the canonical output path. Empty when the source name
	// could not be decoded.
	Destination string
	Trigger     Trigger
	// Err is nil on success.
	Err error
	At  time.Time
}

// OK reports whether the file was copied.
func (r Result) OK() bool {
	return r.Err == nil
}

// Observer receives every processing result.
// Observe is called synchronously from the dispatching goroutine and must
// not block for long.
type Observer interface {
	Observe(Result)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Result)

// Observe calls f(r).
func (f ObserverFunc) Observe(r Result) {
	f(r)
}

// ProcessingError is returned when a decoded file could not be copied.
type ProcessingError struct {
	Source      string
	Destination string
	Err         error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("failed to copy %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Processor renames and copies ingest-named files into the output directory.
type Processor struct {
	destDir   string
	logger    *log.Logger
	observers []Observer

	copied atomic.Int64
	failed atomic.Int64
}

// NewProcessor creates a Processor writing into destDir.
func NewProcessor(destDir string, logger *log.Logger, observers ...Observer) *Processor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Processor{
		destDir:   destDir,
		logger:    logger,
		observers: observers,
	}
}

// Process decodes the basename of src with the ingest grammar and copies the
// file to its canonical name in the destination directory, replacing any
// existing file. Decode failures return an error matching
// naming.ErrNotImagePlaneFile and perform no I/O. Copy failures return a
// *ProcessingError.
func (p *Processor) Process(src string, trigger Trigger) (string, error) {
	res := Result{Source: src, Trigger: trigger}

	rec, err := naming.DecodeIngest(filepath.Base(src), p.destDir)
	if err != nil {
		res.Err = err
		p.report(res)
		return "", err
	}

	res.Destination = rec.FilePath()
	if err := copyFile(src, res.Destination); err != nil {
		res.Err = &ProcessingError{Source: src, Destination: res.Destination, Err: err}
		p.report(res)
		return "", res.Err
	}

	p.report(res)
	return res.Destination, nil
}

// Counts returns the number of successful and failed dispatches so far.
func (p *Processor) Counts() (copied, failed int64) {
	return p.copied.Load(), p.failed.Load()
}

func (p *Processor) report(res Result) {
	res.At = time.Now()

	if res.OK() {
		p.copied.Add(1)
		p.logger.Printf("Copied (%s): %s to %s", res.Trigger, res.Source, res.Destination)
	} else {
		p.failed.Add(1)
		p.logger.Printf("Error processing %s (%s): %v", res.Source, res.Trigger, res.Err)
	}

	for _, o := range p.observers {
		o.Observe(res)
	}
}

// copyFile writes src to a temporary file next to dst and renames it into
// place, so dst is either the previous file or a complete copy.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".spimrelay-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dst)
}
