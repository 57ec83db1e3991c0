// Package capture implements the block stack that collects text emitted by a
// script executor. The context is the executor's output channel: emitted text
// buffers as pending until the next stack operation, at which point it is
// flushed to the root block and to every block still open, so nested content
// stays visible to all ancestors.
package capture
