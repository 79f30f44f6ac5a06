// Package arrayops provides structural transforms over in-memory Arrow
// arrays: per-row length and validity expansion, conversion between
// offset-based and parent-index-based nesting, COO flattening of nested
// lists, value counting, and null-row filling.
//
// All operations are pure functions: inputs are never mutated, outputs are
// freshly allocated through the caller-provided allocator, and no
// references to input buffers are retained beyond structural sharing of
// immutable child arrays. Because of this, every operation is safe to call
// concurrently, including on the same input array.
package arrayops
