package monitor

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const (
	ingestName    = "_channel01_position0002_time0003_view0_z0004.tif"
	canonicalName = "timelapseID-20240808-111112_SPC-0002_TP-0003_ILL-0_CAM-0_CH-01_PL-0004-outOf-0001.tif"
)

// quietLogger discards monitor output in tests.
func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// setupDirs creates input and output directories under a temp dir.
func setupDirs(t *testing.T) (inputDir, outputDir string) {
	t.Helper()

	tmpDir := t.TempDir()
	inputDir = filepath.Join(tmpDir, "input")
	outputDir = filepath.Join(tmpDir, "output")

	if err := os.MkdirAll(inputDir, 0755); err != nil {
		t.Fatalf("Failed to create input dir: %v", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		t.Fatalf("Failed to create output dir: %v", err)
	}

	return inputDir, outputDir
}

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// dropFile writes content outside dir and renames it into place, so a
// concurrent scan never sees a partially written file.
func dropFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	staging, err := os.MkdirTemp(filepath.Dir(dir), "staging-")
	if err != nil {
		t.Fatalf("Failed to create staging dir: %v", err)
	}
	tmp := writeFile(t, staging, name, content)

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("Failed to move %s into place: %v", name, err)
	}
	return path
}

// waitFor polls cond until it returns true or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// listDir returns the names in dir.
func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// recorder collects results for assertions.
type recorder struct {
	mu      sync.Mutex
	results []Result
}

func (r *recorder) Observe(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

func (r *recorder) forSource(path string) []Result {
	var out []Result
	for _, res := range r.all() {
		if res.Source == path {
			out = append(out, res)
		}
	}
	return out
}
