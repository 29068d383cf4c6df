// SPDX-License-Identifier: GPL-3.0-or-later

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValue(t *testing.T) {
	var b Buffer

	assert.Equal(t, 0, b.Size())
	assert.Empty(t, b.Bytes())

	b.Put([]byte("abc"))
	assert.Equal(t, 3, b.Size())
	assert.Equal(t, []byte("abc"), b.Bytes())
}

func TestPutUninitZeroesRegion(t *testing.T) {
	b := New(4)

	// Leave stale bytes in the underlying storage, then shrink
	b.Put([]byte{0xff, 0xff, 0xff, 0xff})
	b.Truncate(0)

	// The re-extended region must read back as zeros
	region := b.PutUninit(4)
	assert.Equal(t, []byte{0, 0, 0, 0}, region)
}

func TestReserveKeepsContents(t *testing.T) {
	b := New(2)
	b.Put([]byte("hi"))

	b.Reserve(1024)

	assert.Equal(t, []byte("hi"), b.Bytes())
	b.Put([]byte("!"))
	assert.Equal(t, []byte("hi!"), b.Bytes())
}

func TestPull(t *testing.T) {
	b := New(8)
	b.Put([]byte("abcdef"))

	b.Pull(2)
	assert.Equal(t, []byte("cdef"), b.Bytes())

	b.Pull(4)
	assert.Equal(t, 0, b.Size())

	// Pulling more than the buffer holds is a contract violation
	b.Put([]byte("x"))
	assert.Panics(t, func() { b.Pull(2) })
}

func TestTruncate(t *testing.T) {
	b := New(8)
	b.Put([]byte("abcdef"))

	b.Truncate(3)
	assert.Equal(t, []byte("abc"), b.Bytes())

	assert.Panics(t, func() { b.Truncate(4) })
}

func TestAt(t *testing.T) {
	b := New(8)
	b.Put([]byte("abcdef"))

	p, ok := b.At(2, 3)
	require.True(t, ok)
	assert.Equal(t, []byte("cde"), p)

	// Zero-size probe at the exact tail succeeds
	_, ok = b.At(6, 0)
	assert.True(t, ok)

	// Out-of-range probes fail
	_, ok = b.At(5, 2)
	assert.False(t, ok)
	_, ok = b.At(-1, 1)
	assert.False(t, ok)
}

func TestAtAssert(t *testing.T) {
	b := New(8)
	b.Put([]byte("abcd"))

	assert.Equal(t, []byte("ab"), b.AtAssert(0, 2))
	assert.Panics(t, func() { b.AtAssert(3, 2) })
}

func TestClear(t *testing.T) {
	b := New(8)
	b.Put([]byte("abcd"))

	b.Clear()
	assert.Equal(t, 0, b.Size())

	// Storage is retained and reusable
	b.Put([]byte("ef"))
	assert.Equal(t, []byte("ef"), b.Bytes())
}
