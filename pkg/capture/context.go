package capture

import (
	"errors"
	"strings"

	"github.com/goliatone/go-layout/pkg/block"
)

// ErrEmptyStack is returned when a block close is requested with no block
// open. Closing without a matching open is a programming error in the
// template body and is reported rather than ignored.
var ErrEmptyStack = errors.New("capture: no open block")

// Filter transforms block content. A close operation may apply a filter to
// the popped block before it reaches the registry.
type Filter func(content string) string

// Context manages the ordered stack of open blocks for one render pass. The
// root block sits below the stack and is always open: every flush reaches it,
// so the root accumulates the template's entire output, block content
// included. Context implements io.Writer and is handed to the executor as its
// only output sink.
type Context struct {
	root    *block.Block
	stack   []*block.Block
	pending strings.Builder
}

// New binds a capture context to the root content block of a template.
func New(root *block.Block) *Context {
	return &Context{root: root}
}

// Write buffers emitted text as pending until the next stack operation.
// It never fails.
func (c *Context) Write(p []byte) (int, error) {
	c.pending.Write(p)
	return len(p), nil
}

// Depth returns the number of open blocks, excluding the root.
func (c *Context) Depth() int {
	return len(c.stack)
}

// Begin flushes pending text to every open block, then opens a new block with
// the given name. An empty name opens an anonymous capture scope.
func (c *Context) Begin(name string) *block.Block {
	c.flush()
	b := block.New(name)
	c.stack = append(c.stack, b)
	return b
}

// End closes the top block: pending text is flushed to every open block (the
// top receives its own tail, ancestors see the child's full content), the top
// is popped, and filter, when supplied, replaces the popped block's final
// content. Returns ErrEmptyStack when nothing is open.
func (c *Context) End(filter Filter) (*block.Block, error) {
	if len(c.stack) == 0 {
		return nil, ErrEmptyStack
	}
	c.flush()
	top := c.pop()
	if filter != nil {
		top.SetContent(filter(top.Content()))
	}
	return top, nil
}

// EndRecursive closes the top block like End, but applies the filter to the
// pending text before the flush, so every open ancestor sees filtered content
// rather than raw. Use when a filter must affect nested visibility, not just
// the stored value.
func (c *Context) EndRecursive(filter Filter) (*block.Block, error) {
	if len(c.stack) == 0 {
		return nil, ErrEmptyStack
	}
	chunk := c.take()
	if filter != nil {
		chunk = filter(chunk)
	}
	c.append(chunk)
	return c.pop(), nil
}

// Finish flushes trailing pending text at the end of a render pass. Blocks
// still open receive the tail but are never registered.
func (c *Context) Finish() {
	c.flush()
}

func (c *Context) flush() {
	c.append(c.take())
}

// take drains the pending buffer.
func (c *Context) take() string {
	chunk := c.pending.String()
	c.pending.Reset()
	return chunk
}

// append propagates a chunk to the root and every open block, exactly once
// each, in emission order.
func (c *Context) append(chunk string) {
	if chunk == "" {
		return
	}
	c.root.Append(chunk)
	for _, b := range c.stack {
		b.Append(chunk)
	}
}

func (c *Context) pop() *block.Block {
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return top
}
