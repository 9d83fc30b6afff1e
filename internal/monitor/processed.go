package monitor

import (
	"sort"
	"sync"
)

// ProcessedSet records absolute paths that have already been dispatched.
// Paths are only ever added; the set lives as long as the process.
type ProcessedSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewProcessedSet creates an empty set.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{paths: make(map[string]struct{})}
}

// Contains reports whether path is in the set.
func (s *ProcessedSet) Contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paths[path]
	return ok
}

// Add inserts path. Adding an existing path is a no-op.
func (s *ProcessedSet) Add(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[path] = struct{}{}
}

// Claim inserts path and reports true if it was not already present.
// Exactly one of any number of concurrent claims for a path succeeds.
func (s *ProcessedSet) Claim(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[path]; ok {
		return false
	}
	s.paths[path] = struct{}{}
	return true
}

// Len returns the number of paths in the set.
func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// Paths returns the members in lexical order.
func (s *ProcessedSet) Paths() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	s.mu.Unlock()

	sort.Strings(out)
	return out
}
