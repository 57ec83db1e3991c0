package block

import "sort"

// Registry maps block names to blocks for one template instance. Names are
// unique and last write wins. A missing name is not an error; lookups report
// absence through their boolean return. The registry is owned by a single
// render call and carries no locking.
type Registry struct {
	blocks map[string]*Block
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		blocks: make(map[string]*Block),
	}
}

// Get retrieves a block by name.
func (r *Registry) Get(name string) (*Block, bool) {
	b, ok := r.blocks[name]
	return b, ok
}

// Set stores content under a name, mutating the existing block when present
// or creating a new one otherwise. Empty names are ignored.
func (r *Registry) Set(name, content string) {
	if name == "" {
		return
	}
	if b, ok := r.blocks[name]; ok {
		b.SetContent(content)
		return
	}
	r.blocks[name] = WithContent(name, content)
}

// Put inserts a named block, overwriting any prior entry of that name.
// Anonymous blocks are ignored.
func (r *Registry) Put(b *Block) {
	if b == nil || !b.Named() {
		return
	}
	r.blocks[b.Name()] = b
}

// Has reports whether a block is registered under the name.
func (r *Registry) Has(name string) bool {
	_, ok := r.blocks[name]
	return ok
}

// Delete removes the named entry. Deleting a missing name is a no-op.
func (r *Registry) Delete(name string) {
	delete(r.blocks, name)
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int {
	return len(r.blocks)
}

// Names returns the sorted list of registered block names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.blocks))
	for name := range r.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReplaceAll discards every entry and adopts the blocks of the other
// registry. This is the hand-off used when a child template propagates its
// blocks to the template it extends: the receiver does not merge, it is
// replaced wholesale.
func (r *Registry) ReplaceAll(other *Registry) {
	if other == nil {
		r.blocks = make(map[string]*Block)
		return
	}
	r.blocks = make(map[string]*Block, other.Len())
	for name, b := range other.blocks {
		r.blocks[name] = b
	}
}

// Each calls fn for every registered block. Iteration order is unspecified.
func (r *Registry) Each(fn func(*Block)) {
	for _, b := range r.blocks {
		fn(b)
	}
}
