package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReconciler_ScanOrdersByModTime(t *testing.T) {
	inputDir, outputDir := setupDirs(t)

	names := []string{
		"_channel00_position0001_time0001_view0_z0001.tif",
		"_channel00_position0001_time0001_view0_z0002.tif",
		"_channel00_position0001_time0001_view0_z0003.tif",
	}
	base := time.Now().Add(-time.Hour)
	// Newest first on disk order, oldest last
	for i, name := range names {
		path := writeFile(t, inputDir, name, name)
		mtime := base.Add(time.Duration(len(names)-i) * time.Minute)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("Chtimes failed: %v", err)
		}
	}

	rec := &recorder{}
	processed := NewProcessedSet()
	r := NewReconciler(inputDir, processed, NewProcessor(outputDir, quietLogger(), rec), quietLogger())

	n, err := r.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Scan() = %d, want 3", n)
	}

	results := rec.all()
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []string{names[2], names[1], names[0]} {
		if got := filepath.Base(results[i].Source); got != want {
			t.Errorf("dispatch %d = %s, want %s", i, got, want)
		}
		if results[i].Trigger != TriggerReconcile {
			t.Errorf("dispatch %d trigger = %s", i, results[i].Trigger)
		}
	}

	if processed.Len() != 3 {
		t.Errorf("processed set size = %d, want 3", processed.Len())
	}
}

func TestReconciler_SkipsProcessedAndDirectories(t *testing.T) {
	inputDir, outputDir := setupDirs(t)

	done := writeFile(t, inputDir, "_channel00_position0001_time0001_view0_z0001.tif", "a")
	fresh := writeFile(t, inputDir, "_channel00_position0001_time0001_view0_z0002.tif", "b")
	if err := os.Mkdir(filepath.Join(inputDir, "_channel00_position0001_time0001_view0_z0003.tif"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	processed := NewProcessedSet()
	processed.Add(done)

	rec := &recorder{}
	r := NewReconciler(inputDir, processed, NewProcessor(outputDir, quietLogger(), rec), quietLogger())

	if _, err := r.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	results := rec.all()
	if len(results) != 1 || results[0].Source != fresh {
		t.Fatalf("expected a single dispatch of %s, got %+v", fresh, results)
	}

	// Second scan finds nothing new
	n, err := r.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second Scan() = %d, want 0", n)
	}
}

func TestReconciler_FailedFilesNotRetried(t *testing.T) {
	inputDir, outputDir := setupDirs(t)
	bad := writeFile(t, inputDir, "randomfile.tif", "junk")

	processed := NewProcessedSet()
	rec := &recorder{}
	r := NewReconciler(inputDir, processed, NewProcessor(outputDir, quietLogger(), rec), quietLogger())

	for i := 0; i < 3; i++ {
		if _, err := r.Scan(context.Background()); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
	}

	if got := len(rec.forSource(bad)); got != 1 {
		t.Errorf("malformed file dispatched %d times, want 1", got)
	}
	if !processed.Contains(bad) {
		t.Error("failed reconcile attempt should be recorded")
	}
	if names := listDir(t, outputDir); len(names) != 0 {
		t.Errorf("output should be empty, got %v", names)
	}
}

func TestReconciler_RelativeDirectoryClaimsAbsolutePaths(t *testing.T) {
	inputDir, outputDir := setupDirs(t)
	src := writeFile(t, inputDir, ingestName, "x")
	t.Chdir(filepath.Dir(inputDir))

	processed := NewProcessedSet()
	rec := &recorder{}
	r := NewReconciler(filepath.Base(inputDir), processed, NewProcessor(outputDir, quietLogger(), rec), quietLogger())

	if _, err := r.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	results := rec.all()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !filepath.IsAbs(results[0].Source) {
		t.Errorf("Source = %s, want an absolute path", results[0].Source)
	}
	// An event for the same file carries the absolute path and must see the claim
	if !processed.Contains(src) {
		t.Errorf("processed set %v does not contain %s", processed.Paths(), src)
	}
}

func TestReconciler_MissingDirectory(t *testing.T) {
	_, outputDir := setupDirs(t)
	r := NewReconciler(filepath.Join(t.TempDir(), "gone"), NewProcessedSet(), NewProcessor(outputDir, quietLogger()), quietLogger())

	if _, err := r.Scan(context.Background()); err == nil {
		t.Error("Scan() of a missing directory should fail")
	}
}

func TestReconciler_CancelledContext(t *testing.T) {
	inputDir, outputDir := setupDirs(t)
	writeFile(t, inputDir, ingestName, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processed := NewProcessedSet()
	r := NewReconciler(inputDir, processed, NewProcessor(outputDir, quietLogger()), quietLogger())

	n, err := r.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if n != 0 || processed.Len() != 0 {
		t.Errorf("cancelled scan dispatched %d files", n)
	}
}

func TestReconciler_RunScansImmediately(t *testing.T) {
	inputDir, outputDir := setupDirs(t)
	writeFile(t, inputDir, ingestName, "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewReconciler(inputDir, NewProcessedSet(), NewProcessor(outputDir, quietLogger()), quietLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, time.Hour)
	}()

	if !waitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(filepath.Join(outputDir, canonicalName))
		return err == nil
	}) {
		t.Error("first scan did not run at startup")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
