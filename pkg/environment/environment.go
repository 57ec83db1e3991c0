package environment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound signals that no search path contains the requested template.
var ErrNotFound = errors.New("environment: template not found")

// Environment resolves template names to source locations and exposes the
// key-value store shared by all templates in a render chain.
type Environment interface {
	// ResolvePath maps a template name to a concrete source location.
	ResolvePath(name string) (string, error)
	// Var reads a shared variable by name.
	Var(name string) (any, bool)
	// SetVar writes a shared variable.
	SetVar(name string, value any)
	// HasVar reports whether a shared variable is set.
	HasVar(name string) bool
	// DeleteVar removes a shared variable. Missing names are a no-op.
	DeleteVar(name string)
}

// Option configures a file environment before construction.
type Option func(*Env)

// WithSearchPath appends base directories searched in order during
// resolution. Empty entries are ignored.
func WithSearchPath(paths ...string) Option {
	return func(e *Env) {
		for _, p := range paths {
			if strings.TrimSpace(p) == "" {
				continue
			}
			e.paths = append(e.paths, p)
		}
	}
}

// WithExtension sets the default extension appended to names that lack one.
func WithExtension(ext string) Option {
	return func(e *Env) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		e.ext = trimmed
	}
}

// WithVars seeds the shared variable store.
func WithVars(vars map[string]any) Option {
	return func(e *Env) {
		for name, value := range vars {
			e.vars[name] = value
		}
	}
}

// Env is a filesystem-backed environment: template names resolve against an
// ordered list of base directories, checked for existence with os.Stat.
type Env struct {
	paths []string
	ext   string

	mu   sync.RWMutex
	vars map[string]any
}

var _ Environment = (*Env)(nil)

// New constructs a file environment. With no search paths configured, names
// resolve relative to the current working directory.
func New(options ...Option) *Env {
	e := &Env{
		vars: make(map[string]any),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if len(e.paths) == 0 {
		e.paths = []string{"."}
	}
	return e
}

// ResolvePath locates the named template on disk. Absolute paths are checked
// directly; relative names are joined against each search path in order. The
// configured extension is appended when the name has none.
func (e *Env) ResolvePath(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("environment: empty template name: %w", ErrNotFound)
	}
	if e.ext != "" && filepath.Ext(trimmed) == "" {
		trimmed += e.ext
	}

	if filepath.IsAbs(trimmed) {
		if _, err := os.Stat(trimmed); err == nil {
			return trimmed, nil
		}
		return "", fmt.Errorf("environment: %q: %w", name, ErrNotFound)
	}

	tried := make([]string, 0, len(e.paths))
	for _, base := range e.paths {
		candidate := filepath.Join(base, trimmed)
		tried = append(tried, candidate)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		// Absolute locations keep chain hops and cycle tracking consistent
		// no matter which loader ends up reading the file.
		if abs, err := filepath.Abs(candidate); err == nil {
			return abs, nil
		}
		return candidate, nil
	}
	return "", fmt.Errorf("environment: %q (tried %s): %w", name, strings.Join(tried, ", "), ErrNotFound)
}

// Var reads a shared variable.
func (e *Env) Var(name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	value, ok := e.vars[name]
	return value, ok
}

// SetVar writes a shared variable.
func (e *Env) SetVar(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value
}

// HasVar reports whether a shared variable is set.
func (e *Env) HasVar(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.vars[name]
	return ok
}

// DeleteVar removes a shared variable.
func (e *Env) DeleteVar(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vars, name)
}
