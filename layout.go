// Package layout composes page templates from named, nestable content blocks
// with single-parent inheritance. Templates declare blocks while their script
// body executes; a child template's blocks substitute into the template it
// extends, hop by hop, until the chain root produces the final string.
package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-layout/pkg/block"
	"github.com/goliatone/go-layout/pkg/capture"
	"github.com/goliatone/go-layout/pkg/environment"
	"github.com/goliatone/go-layout/pkg/executor"
	"github.com/goliatone/go-layout/pkg/executor/pongo"
	"github.com/goliatone/go-layout/pkg/template"
)

const defaultExtension = ".tpl"

// Block is an accumulated unit of text content.
type Block = block.Block

// Registry is a per-template name-to-block map.
type Registry = block.Registry

// Filter transforms block content on close.
type Filter = capture.Filter

// Environment resolves template names and hosts shared variables.
type Environment = environment.Environment

// Executor runs template bodies.
type Executor = executor.Executor

// Template orchestrates one rendering pass.
type Template = template.Template

// Option customises the engine configuration.
type Option func(*Engine)

// WithEnvironment injects a custom environment collaborator.
func WithEnvironment(env environment.Environment) Option {
	return func(e *Engine) {
		e.env = env
	}
}

// WithExecutor injects a custom script executor.
func WithExecutor(exec executor.Executor) Option {
	return func(e *Engine) {
		e.exec = exec
	}
}

// WithBaseDir points the default environment and executor at a template
// directory on disk. Ignored when both collaborators are injected.
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// WithExtension overrides the default template extension used by the default
// collaborators.
func WithExtension(ext string) Option {
	return func(e *Engine) {
		e.extension = ext
	}
}

// Engine wires the environment and executor collaborators and renders
// templates through them. A fresh Template instance is created per render
// call; the engine itself holds no per-render state.
type Engine struct {
	env       environment.Environment
	exec      executor.Executor
	baseDir   string
	extension string
	initErr   error
}

// New constructs an Engine applying any provided options. Missing
// collaborators are initialised with the built-in implementations when a
// base directory is configured.
func New(options ...Option) *Engine {
	e := &Engine{
		extension: defaultExtension,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	e.applyDefaults()
	return e
}

// Request describes one render call.
type Request struct {
	// Template names the template to render, resolved through the
	// environment.
	Template string

	// Variables is the writable input set exposed to the template body.
	// Callable values are dropped before exposure.
	Variables map[string]any
}

// Render resolves the requested template, builds a fresh Template bound to
// the engine's collaborators, and runs the full composition pass.
func (e *Engine) Render(ctx context.Context, req Request) (string, error) {
	if ctx == nil {
		return "", errors.New("layout: context is required")
	}
	if err := e.initErr; err != nil {
		return "", err
	}
	if req.Template == "" {
		return "", errors.New("layout: template name is required")
	}

	location := req.Template
	if e.env != nil {
		if resolved, err := e.env.ResolvePath(req.Template); err == nil {
			location = resolved
		}
	}

	tpl := template.New(location,
		template.WithEnvironment(e.env),
		template.WithExecutor(e.exec),
	)
	return tpl.Render(ctx, req.Variables)
}

// RenderTemplate renders a template from a base directory in one call using
// the default collaborators. It is the simplest entry point for callers that
// just want the composed output.
func RenderTemplate(ctx context.Context, baseDir, name string, variables map[string]any, options ...Option) (string, error) {
	opts := append([]Option{WithBaseDir(baseDir)}, options...)
	engine := New(opts...)
	return engine.Render(ctx, Request{
		Template:  name,
		Variables: variables,
	})
}

func (e *Engine) applyDefaults() {
	if e.env == nil && e.baseDir != "" {
		e.env = environment.New(
			environment.WithSearchPath(e.baseDir),
			environment.WithExtension(e.extension),
		)
	}
	if e.exec == nil {
		if e.baseDir == "" {
			e.initErr = errors.New("layout: executor is required when no base dir is set")
			return
		}
		exec, err := pongo.New(
			pongo.WithBaseDir(e.baseDir),
			pongo.WithExtension(e.extension),
		)
		if err != nil {
			e.initErr = fmt.Errorf("layout: default executor: %w", err)
			return
		}
		e.exec = exec
	}
}
