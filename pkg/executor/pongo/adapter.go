// Package pongo provides a pongo2-backed script executor. Template bodies are
// compiled to an in-memory representation and executed from there; the stored
// source is never rewritten, which is how the adapter honors the sandbox
// contract without destructive sanitization. Block declarations and
// inheritance are exposed to the body as context functions bound to the
// invocation's template surface.
package pongo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-layout/pkg/executor"
)

// Option configures the adapter before construction.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
	extension string
	globals   map[string]any
}

// WithBaseDir configures the adapter to load template sources from a base
// directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS configures the adapter to load template sources from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobals seeds values available to every executed body.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Engine executes template bodies through a pongo2 template set.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
	baseDir     string
	fsys        fs.FS
}

var _ executor.Executor = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("pongo: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("layout", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
		baseDir:     cfg.baseDir,
		fsys:        cfg.templates,
	}

	if len(cfg.globals) > 0 {
		if engine.templateSet.Globals == nil {
			engine.templateSet.Globals = make(pongo2.Context)
		}
		for key, value := range cfg.globals {
			engine.templateSet.Globals[key] = value
		}
	}

	return engine, nil
}

// Execute runs the template body at the invocation's location, streaming
// emitted text into the invocation sink so block declarations interleave
// correctly with surrounding output.
func (e *Engine) Execute(ctx context.Context, inv executor.Invocation) error {
	if e == nil || e.templateSet == nil {
		return errors.New("pongo: engine is nil")
	}
	if ctx == nil {
		return errors.New("pongo: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	templatePath := inv.Location
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}
	if !e.exists(templatePath) {
		return fmt.Errorf("pongo: %q: %w", inv.Location, executor.ErrNotFound)
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return err
	}

	viewContext := make(pongo2.Context, len(inv.Variables)+8)
	for key, value := range inv.Variables {
		viewContext[key] = value
	}

	var scriptErr error
	bindControls(viewContext, inv.Template, &scriptErr)

	if err := tmpl.ExecuteWriterUnbuffered(viewContext, inv.Output); err != nil {
		return fmt.Errorf("pongo: execute template %q: %w", templatePath, err)
	}
	return scriptErr
}

// bindControls exposes the template's capture and inheritance surface to the
// executed body. The environment store is deliberately not exposed; the body
// only sees its sanitized variables and these helpers.
func bindControls(viewContext pongo2.Context, controls executor.Controls, scriptErr *error) {
	if controls == nil {
		return
	}

	record := func(err error) {
		if err != nil && *scriptErr == nil {
			*scriptErr = err
		}
	}

	viewContext["extend"] = func(params ...*pongo2.Value) *pongo2.Value {
		if len(params) > 0 {
			record(controls.Extend(params[0].String()))
		}
		return pongo2.AsValue("")
	}
	viewContext["begin_block"] = func(params ...*pongo2.Value) *pongo2.Value {
		name := ""
		if len(params) > 0 {
			name = params[0].String()
		}
		controls.Begin(name)
		return pongo2.AsValue("")
	}
	viewContext["end_block"] = func(params ...*pongo2.Value) *pongo2.Value {
		_, err := controls.EndBlock(nil)
		record(err)
		return pongo2.AsValue("")
	}
	viewContext["block"] = func(params ...*pongo2.Value) *pongo2.Value {
		if len(params) == 0 {
			return pongo2.AsValue("")
		}
		content, _ := controls.BlockContent(params[0].String())
		return pongo2.AsSafeValue(content)
	}
	viewContext["block_or"] = func(params ...*pongo2.Value) *pongo2.Value {
		if len(params) == 0 {
			return pongo2.AsValue("")
		}
		if content, ok := controls.BlockContent(params[0].String()); ok {
			return pongo2.AsSafeValue(content)
		}
		if len(params) > 1 {
			return pongo2.AsSafeValue(params[1].String())
		}
		return pongo2.AsValue("")
	}
	viewContext["assign"] = func(params ...*pongo2.Value) *pongo2.Value {
		if len(params) < 2 {
			record(fmt.Errorf("pongo: assign requires a name and a value"))
			return pongo2.AsValue("")
		}
		record(controls.Assign(params[0].String(), params[1].String()))
		return pongo2.AsValue("")
	}
}

func (e *Engine) exists(path string) bool {
	if filepath.IsAbs(path) {
		_, err := os.Stat(path)
		return err == nil
	}
	if e.baseDir != "" {
		if _, err := os.Stat(filepath.Join(e.baseDir, path)); err == nil {
			return true
		}
	}
	if e.fsys != nil {
		if _, err := fs.Stat(e.fsys, path); err == nil {
			return true
		}
	}
	return false
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}
