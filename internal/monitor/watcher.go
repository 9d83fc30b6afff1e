package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileEvent reports a file created in the watched directory.
type FileEvent struct {
	// Path is the absolute path of the new file.
	Path string
	// Time is when the notification was received.
	Time time.Time
}

// FileWatcher watches a single directory, non-recursively, for new files.
// It uses fsnotify for cross-platform file system event monitoring.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	events  chan FileEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	closed  bool
	dir     string
}

// NewFileWatcher creates a new FileWatcher instance.
// The watcher must be started with Start() before it will emit events.
func NewFileWatcher() (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		events:  make(chan FileEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching dir for newly created files.
func (fw *FileWatcher) Start(dir string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return fmt.Errorf("watcher already stopped")
	}
	if fw.running {
		return fmt.Errorf("watcher already running")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	if err := fw.watcher.Add(absDir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", absDir, err)
	}

	fw.dir = absDir
	fw.running = true
	fw.wg.Add(1)
	go fw.processEvents()

	return nil
}

// Stop stops watching and releases the underlying fsnotify watcher.
// It blocks until the event processing goroutine has exited and closes the
// Events() and Errors() channels. Calling Stop more than once is safe.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	fw.running = false
	fw.mu.Unlock()

	close(fw.done)

	// Closing the watcher unblocks the event loop
	closeErr := fw.watcher.Close()

	fw.wg.Wait()

	close(fw.events)
	close(fw.errors)

	if closeErr != nil {
		return fmt.Errorf("failed to close watcher: %w", closeErr)
	}
	return nil
}

// Events returns the channel that emits FileEvent notifications.
// This channel is closed when the watcher is stopped.
func (fw *FileWatcher) Events() <-chan FileEvent {
	return fw.events
}

// Errors returns the channel that emits error notifications.
// This channel is closed when the watcher is stopped.
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// IsRunning returns true if the watcher is currently running.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if fileEvent, ok := fw.convertEvent(event); ok {
				select {
				case fw.events <- fileEvent:
				case <-fw.done:
					return
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case fw.errors <- err:
			case <-fw.done:
				return
			}
		}
	}
}

// convertEvent keeps creations of non-directory entries directly inside the
// watched directory. An entry that is already gone is still reported; the
// processor surfaces that as a copy error.
func (fw *FileWatcher) convertEvent(event fsnotify.Event) (FileEvent, bool) {
	if !event.Has(fsnotify.Create) {
		return FileEvent{}, false
	}

	absPath, err := filepath.Abs(event.Name)
	if err != nil {
		return FileEvent{}, false
	}
	if filepath.Dir(absPath) != fw.dir {
		return FileEvent{}, false
	}

	if info, err := os.Stat(absPath); err == nil && info.IsDir() {
		return FileEvent{}, false
	}

	return FileEvent{Path: absPath, Time: time.Now()}, true
}
