// Package block defines the Block content unit and the per-template Registry
// that maps block names to accumulated content. Both types are owned by a
// single render call and are not safe for concurrent use.
package block
