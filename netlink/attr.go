//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"bytes"

	"github.com/bassosimone/runtimex"
)

// Attr is a view of one netlink attribute: the 4-byte attribute header
// followed by its payload. A nil Attr means the attribute is absent.
//
// The typed getters panic if the payload is shorter than the requested
// type: passing an unvalidated attribute to a getter is a programming
// error. Run the attribute stream through [ParsePolicy] first, which
// validates lengths against the declared policy.
type Attr []byte

// declaredLen returns the nla_len field, which counts the attribute
// header itself.
func (a Attr) declaredLen() int {
	return int(native.Uint16(a[0:2]))
}

// Type returns the attribute type.
func (a Attr) Type() uint16 {
	return native.Uint16(a[2:4])
}

// Get returns the attribute payload.
func (a Attr) Get() []byte {
	runtimex.Assert(a.declaredLen() >= AttrHdrLen)
	return a[AttrHdrLen:a.declaredLen()]
}

// Size returns the number of bytes in the attribute payload.
func (a Attr) Size() int {
	return len(a.Get())
}

// Unspec asserts that the payload is at least size bytes long and
// returns it.
func (a Attr) Unspec(size int) []byte {
	runtimex.Assert(a.declaredLen() >= AttrHdrLen+size)
	return a[AttrHdrLen:a.declaredLen()]
}

// Flag reports whether the attribute is present. (Some netlink
// protocols use the presence or absence of an attribute as a Boolean
// flag.)
func (a Attr) Flag() bool {
	return a != nil
}

// U8 returns the 8-bit value in the payload.
//
// Panics unless the payload is at least 1 byte long.
func (a Attr) U8() uint8 {
	return a.Unspec(1)[0]
}

// U16 returns the 16-bit value in the payload.
//
// Panics unless the payload is at least 2 bytes long.
func (a Attr) U16() uint16 {
	return native.Uint16(a.Unspec(2))
}

// U32 returns the 32-bit value in the payload.
//
// Panics unless the payload is at least 4 bytes long.
func (a Attr) U32() uint32 {
	return native.Uint32(a.Unspec(4))
}

// U64 returns the 64-bit value in the payload.
//
// Panics unless the payload is at least 8 bytes long.
func (a Attr) U64() uint64 {
	return native.Uint64(a.Unspec(8))
}

// String returns the null-terminated string value in the payload,
// without the terminator.
//
// Panics unless the payload contains a null terminator.
func (a Attr) String() string {
	payload := a.Get()
	end := bytes.IndexByte(payload, 0)
	runtimex.Assert(end >= 0)
	return string(payload[:end])
}
