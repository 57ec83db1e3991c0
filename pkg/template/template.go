package template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-layout/pkg/block"
	"github.com/goliatone/go-layout/pkg/capture"
	"github.com/goliatone/go-layout/pkg/environment"
	"github.com/goliatone/go-layout/pkg/executor"
)

// ContentBlock is the reserved registry key holding a template's own
// unblocked output. When a child extends a parent, the parent reads this
// entry as the substitution point for the child's body.
const ContentBlock = "content"

// Option configures a template before use.
type Option func(*Template)

// WithEnvironment binds the environment collaborator used for path
// resolution and shared variables. The template does not own it.
func WithEnvironment(env environment.Environment) Option {
	return func(t *Template) {
		t.env = env
	}
}

// WithExecutor binds the script executor that runs the template body.
func WithExecutor(exec executor.Executor) Option {
	return func(t *Template) {
		t.exec = exec
	}
}

// Template owns one rendering pass over a single source location. A template
// extends at most one other template; chains form by each ancestor calling
// its own Extend. Instances are exclusive to one render call.
type Template struct {
	source  string
	env     environment.Environment
	exec    executor.Executor
	root    *block.Block
	blocks  *block.Registry
	capture *capture.Context
	extends *Template

	// visited tracks source locations across the extension chain so
	// arbitrary-length cycles are rejected, not just self-extension.
	visited map[string]struct{}

	// pass stages block closes of the in-flight render so a failed
	// executor invocation registers nothing.
	pass *block.Registry
}

var _ executor.Controls = (*Template)(nil)

// New constructs a template for a source location. An empty source yields a
// synthetic template: rendering skips execution and returns whatever content
// was assigned programmatically.
func New(source string, options ...Option) *Template {
	root := block.New("")
	t := &Template{
		source:  source,
		root:    root,
		blocks:  block.NewRegistry(),
		capture: capture.New(root),
		visited: make(map[string]struct{}),
	}
	if source != "" {
		t.visited[source] = struct{}{}
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t
}

// Source returns the template's source location, empty for synthetic
// templates.
func (t *Template) Source() string {
	return t.source
}

// Parent returns the template this one extends, nil when none.
func (t *Template) Parent() *Template {
	return t.extends
}

// RootContent returns the template's accumulated unblocked output.
func (t *Template) RootContent() string {
	return t.root.Content()
}

// AppendContent appends text to the root content programmatically. This is
// how synthetic templates, which have no source to execute, receive output.
func (t *Template) AppendContent(text string) {
	t.root.Append(text)
}

// Environment returns the bound environment collaborator, nil when none.
func (t *Template) Environment() environment.Environment {
	return t.env
}

// Extend records the template this one inherits from. An empty path is a
// no-op. A path that resolves to this template's own source is a no-op,
// preventing self-inheritance. A path already seen on the chain returns
// ErrExtendCycle. The parent inherits this template's environment and
// executor and renders lazily, after this template's pass completes.
func (t *Template) Extend(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}

	resolved := trimmed
	if t.env != nil {
		if location, err := t.env.ResolvePath(trimmed); err == nil {
			resolved = location
		}
	}
	if resolved == t.source && t.source != "" {
		return nil
	}
	if _, seen := t.visited[resolved]; seen {
		return fmt.Errorf("template: extend %q: %w", path, ErrExtendCycle)
	}

	parent := New(resolved, WithEnvironment(t.env), WithExecutor(t.exec))
	for location := range t.visited {
		parent.visited[location] = struct{}{}
	}
	parent.visited[resolved] = struct{}{}
	t.extends = parent
	return nil
}

// Begin opens a capture region. Text emitted before the open is flushed to
// every block already open. An empty name opens an anonymous scope that
// contributes to ancestor propagation but is never registered.
func (t *Template) Begin(name string) {
	t.capture.Begin(name)
}

// EndBlock closes the innermost open region. A named block is stored into
// the registry, overwriting any prior entry of that name: the last close for
// a given name wins. filter, when supplied, transforms the stored content.
// Returns capture.ErrEmptyStack when no region is open.
func (t *Template) EndBlock(filter capture.Filter) (*block.Block, error) {
	b, err := t.capture.End(filter)
	if err != nil {
		return nil, err
	}
	t.registry().Put(b)
	return b, nil
}

// EndBlockRecursive closes the innermost open region, applying filter to the
// pending text before ancestors see it, so filtered content propagates
// through the whole open stack rather than only into the stored value.
func (t *Template) EndBlockRecursive(filter capture.Filter) (*block.Block, error) {
	b, err := t.capture.EndRecursive(filter)
	if err != nil {
		return nil, err
	}
	t.registry().Put(b)
	return b, nil
}

// Assign stores a literal value under a block name without capture. Returns
// ErrMissingName when the name is empty.
func (t *Template) Assign(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	t.registry().Put(block.WithContent(name, value))
	return nil
}

// Lookup retrieves a named block. Absence is not an error.
func (t *Template) Lookup(name string) (*block.Block, bool) {
	if t.pass != nil {
		if b, ok := t.pass.Get(name); ok {
			return b, true
		}
	}
	return t.blocks.Get(name)
}

// BlockContent reads a registered block's content by name.
func (t *Template) BlockContent(name string) (string, bool) {
	b, ok := t.Lookup(name)
	if !ok {
		return "", false
	}
	return b.Content(), true
}

// Set stores content under a block name, mutating an existing block or
// creating a new one.
func (t *Template) Set(name, content string) {
	t.registry().Set(name, content)
}

// Has reports whether a block is registered under the name.
func (t *Template) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Delete removes the named block.
func (t *Template) Delete(name string) {
	if t.pass != nil {
		t.pass.Delete(name)
	}
	t.blocks.Delete(name)
}

// Blocks returns the template's block registry.
func (t *Template) Blocks() *block.Registry {
	return t.blocks
}

// SetBlocks replaces the registry wholesale with the given one. This is the
// chain hand-off: the receiver does not merge, the child is expected to have
// carried forward any defaults it wants to keep.
func (t *Template) SetBlocks(blocks *block.Registry) {
	t.blocks.ReplaceAll(blocks)
}

// Render executes the template body, assembles the effective registry, and
// walks the extension chain. Variables holding callables are dropped before
// exposure; everything else passes through untouched. The result is the
// root template's output once every hop has substituted its blocks.
func (t *Template) Render(ctx context.Context, variables map[string]any) (string, error) {
	if ctx == nil {
		return "", errors.New("template: context is required")
	}

	if t.source != "" {
		if t.exec == nil {
			return "", fmt.Errorf("template: no executor bound for %q", t.source)
		}
		t.pass = block.NewRegistry()
		err := t.exec.Execute(ctx, executor.Invocation{
			Location:  t.source,
			Variables: sanitizeVariables(variables),
			Output:    t.capture,
			Template:  t,
		})
		if err != nil {
			t.pass = nil
			if errors.Is(err, executor.ErrNotFound) {
				return "", fmt.Errorf("template: %q: %w", t.source, ErrSourceNotFound)
			}
			return "", fmt.Errorf("template: execute %q: %w", t.source, err)
		}
		t.capture.Finish()
		t.commitPass()
	}

	if existing, ok := t.blocks.Get(ContentBlock); ok {
		t.blocks.Set(ContentBlock, existing.Content()+t.root.Content())
	} else {
		t.blocks.Set(ContentBlock, t.root.Content())
	}

	if t.extends != nil {
		t.extends.SetBlocks(t.blocks)
		return t.extends.Render(ctx, nil)
	}
	return t.root.Content(), nil
}

// registry returns the target for block writes: the staging registry while a
// render pass is in flight, the template registry otherwise.
func (t *Template) registry() *block.Registry {
	if t.pass != nil {
		return t.pass
	}
	return t.blocks
}

func (t *Template) commitPass() {
	if t.pass == nil {
		return
	}
	t.pass.Each(func(b *block.Block) {
		t.blocks.Put(b)
	})
	t.pass = nil
}
