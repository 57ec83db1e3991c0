package block

import "strings"

// Block is a named or anonymous unit of accumulated text. Blocks are created
// when a capture region opens or when a value is assigned directly to a name.
// Content grows through Append while the block is open on the capture stack
// and can be replaced wholesale by a filter pass once the block closes.
type Block struct {
	name    string
	content strings.Builder
}

// New returns an empty block. An empty name produces an anonymous block:
// it participates in capture propagation but is never stored in a registry.
func New(name string) *Block {
	return &Block{name: name}
}

// WithContent returns a block seeded with content, used for direct value
// assignment.
func WithContent(name, content string) *Block {
	b := New(name)
	b.content.WriteString(content)
	return b
}

// Name returns the block's name, empty for anonymous blocks.
func (b *Block) Name() string {
	return b.name
}

// Named reports whether the block carries a registry name.
func (b *Block) Named() bool {
	return b.name != ""
}

// Append concatenates text onto the existing content.
func (b *Block) Append(text string) {
	b.content.WriteString(text)
}

// SetContent replaces the content wholesale. Used after a filter pass or for
// direct assignment through a registry.
func (b *Block) SetContent(text string) {
	b.content.Reset()
	b.content.WriteString(text)
}

// Content returns the accumulated text in append order.
func (b *Block) Content() string {
	return b.content.String()
}

// String implements fmt.Stringer so blocks compose by plain concatenation.
func (b *Block) String() string {
	return b.Content()
}

// Len returns the current content length in bytes.
func (b *Block) Len() int {
	return b.content.Len()
}
