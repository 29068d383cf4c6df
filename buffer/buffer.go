// SPDX-License-Identifier: GPL-3.0-or-later

// Package buffer provides the growable byte buffer used to stage
// protocol messages.
//
// A [*Buffer] accumulates data at its tail and truncates from its head.
// The first bytes of a buffer are typically a fixed-size protocol header
// that the owning code overlays once enough bytes are present; the
// protocol packages finalize header length fields in place at send time.
//
// A buffer is exclusively owned by whichever component currently holds
// it (builder, then socket layer, then caller); ownership transfers
// explicitly and buffers are never shared.
package buffer

import "github.com/bassosimone/runtimex"

// Buffer is a growable sequence of bytes.
//
// The zero value is an empty buffer ready for use. Use [New] to
// preallocate capacity when the final message size is known.
type Buffer struct {
	data []byte
}

// New returns an empty [*Buffer] with room for capacity bytes.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Size returns the number of bytes currently in the buffer.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Bytes returns the buffer contents.
//
// The returned slice aliases the buffer and is invalidated by any
// subsequent mutation.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reserve ensures that the buffer has room for at least n more bytes
// without reallocating, copying its data if necessary.
func (b *Buffer) Reserve(n int) {
	runtimex.Assert(n >= 0)
	if cap(b.data)-len(b.data) < n {
		grown := make([]byte, len(b.data), len(b.data)+n)
		copy(grown, b.data)
		b.data = grown
	}
}

// PutUninit appends n bytes to the tail of the buffer and returns the
// newly appended region. The region is zeroed, so callers that fill it
// only partially still produce deterministic padding.
func (b *Buffer) PutUninit(n int) []byte {
	runtimex.Assert(n >= 0)
	b.Reserve(n)
	off := len(b.data)
	b.data = b.data[:off+n]
	tail := b.data[off:]
	clear(tail)
	return tail
}

// Put appends p to the tail of the buffer.
func (b *Buffer) Put(p []byte) {
	copy(b.PutUninit(len(p)), p)
}

// Pull removes the first n bytes from the buffer. Used to discard the
// already-written prefix after a partial send.
//
// Panics if the buffer holds fewer than n bytes.
func (b *Buffer) Pull(n int) {
	runtimex.Assert(n >= 0 && n <= len(b.data))
	b.data = b.data[n:]
}

// Truncate shrinks the buffer to n bytes. Used after a sizing probe
// that overshoots the actual message size.
//
// Panics if the buffer holds fewer than n bytes.
func (b *Buffer) Truncate(n int) {
	runtimex.Assert(n >= 0 && n <= len(b.data))
	b.data = b.data[:n]
}

// Clear empties the buffer without releasing its storage.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
}

// At returns the size bytes starting at offset, or false if the buffer
// does not contain that range.
func (b *Buffer) At(offset, size int) ([]byte, bool) {
	if offset < 0 || size < 0 || offset+size > len(b.data) {
		return nil, false
	}
	return b.data[offset : offset+size], true
}

// AtAssert returns the size bytes starting at offset.
//
// Panics if the buffer does not contain that range: callers use it only
// for ranges whose presence they have already validated, so a miss is a
// programming error rather than an external condition.
func (b *Buffer) AtAssert(offset, size int) []byte {
	p, ok := b.At(offset, size)
	runtimex.Assert(ok)
	return p
}
