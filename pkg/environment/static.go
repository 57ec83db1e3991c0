package environment

import (
	"fmt"
	"sync"
)

// Static is an in-memory environment backed by a name-to-source table.
// Useful for tests and for embedding templates without touching disk.
type Static struct {
	sources map[string]string

	mu   sync.RWMutex
	vars map[string]any
}

var _ Environment = (*Static)(nil)

// NewStatic builds an environment over the given name-to-source table.
func NewStatic(sources map[string]string) *Static {
	copied := make(map[string]string, len(sources))
	for name, src := range sources {
		copied[name] = src
	}
	return &Static{
		sources: copied,
		vars:    make(map[string]any),
	}
}

// ResolvePath returns the name itself when the table holds an entry for it;
// the name doubles as the source location.
func (s *Static) ResolvePath(name string) (string, error) {
	if _, ok := s.sources[name]; ok {
		return name, nil
	}
	return "", fmt.Errorf("environment: %q: %w", name, ErrNotFound)
}

// Source returns the raw template source for a resolved location. Executors
// working against a Static environment read bodies through this accessor.
func (s *Static) Source(location string) (string, bool) {
	src, ok := s.sources[location]
	return src, ok
}

// Var reads a shared variable.
func (s *Static) Var(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.vars[name]
	return value, ok
}

// SetVar writes a shared variable.
func (s *Static) SetVar(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// HasVar reports whether a shared variable is set.
func (s *Static) HasVar(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vars[name]
	return ok
}

// DeleteVar removes a shared variable.
func (s *Static) DeleteVar(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vars, name)
}
