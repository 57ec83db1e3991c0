// Package executor defines the seam between the composition core and the
// engine that runs a template's script body. The core hands an executor a
// source location, a sanitized variable set, and a single output sink; the
// executor emits text fragments into the sink and drives block declarations
// through the Controls surface. Implementations are responsible for the
// sandbox contract: the executed body must not reach process-control
// functions, ambient state, or the shared environment store, and the stored
// template source must never be rewritten.
package executor

import (
	"context"
	"errors"
	"io"

	"github.com/goliatone/go-layout/pkg/block"
	"github.com/goliatone/go-layout/pkg/capture"
)

// ErrNotFound signals that the invocation's source location does not exist.
// The template core maps it to its own source-not-found error.
var ErrNotFound = errors.New("executor: template source not found")

// Controls is the surface a running template body uses against its owning
// template: block capture, direct assignment, inheritance, and read access
// to already-registered blocks.
type Controls interface {
	// Begin opens a capture region. An empty name opens an anonymous scope.
	Begin(name string)
	// EndBlock closes the innermost open region, optionally filtering the
	// stored content.
	EndBlock(filter capture.Filter) (*block.Block, error)
	// EndBlockRecursive closes the innermost open region, filtering the
	// pending text before ancestors see it.
	EndBlockRecursive(filter capture.Filter) (*block.Block, error)
	// Assign stores a literal value under a block name without capture.
	Assign(name, value string) error
	// Extend records the template this one inherits from.
	Extend(path string) error
	// BlockContent reads a registered block's content by name.
	BlockContent(name string) (string, bool)
}

// Invocation carries everything an executor needs for one run of a template
// body. Variables are already sanitized by the core; Output is the capture
// context sink.
type Invocation struct {
	Location  string
	Variables map[string]any
	Output    io.Writer
	Template  Controls
}

// Executor runs a template body and emits its output through the invocation
// sink. A returned error aborts the render pass.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) error
}

// Func adapts a plain function to the Executor interface. Useful for tests
// and for embedding scripted template bodies.
type Func func(ctx context.Context, inv Invocation) error

// Execute satisfies Executor.
func (f Func) Execute(ctx context.Context, inv Invocation) error {
	return f(ctx, inv)
}
