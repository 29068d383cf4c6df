//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package vconn

import (
	"encoding/binary"

	"github.com/d548/openflow/buffer"
)

const (
	// HeaderLen is the size of the fixed header that starts every
	// message on the wire: total length (network byte order), then
	// message type.
	HeaderLen = 4

	// DefaultPort is the TCP port used when an address omits one.
	DefaultPort = 6633
)

// PutHeader appends a message header of the given type to msg, which
// must be initially empty. The length field is left at zero; call
// [FinalizeLength] once the payload is complete.
func PutHeader(msg *buffer.Buffer, typ uint16) {
	b := msg.PutUninit(HeaderLen)
	binary.BigEndian.PutUint16(b[2:4], typ)
}

// FinalizeLength sets the header length field to the current size of
// msg. Do this last, after the payload is complete and before handing
// the message to [Vconn.Send].
func FinalizeLength(msg *buffer.Buffer) {
	binary.BigEndian.PutUint16(msg.AtAssert(0, 2), uint16(msg.Size()))
}

// MsgLength returns the total message length declared by the header at
// the head of msg.
//
// Panics unless msg holds at least a full header.
func MsgLength(msg *buffer.Buffer) int {
	return int(binary.BigEndian.Uint16(msg.AtAssert(0, HeaderLen)[0:2]))
}

// MsgType returns the message type declared by the header at the head
// of msg.
//
// Panics unless msg holds at least a full header.
func MsgType(msg *buffer.Buffer) uint16 {
	return binary.BigEndian.Uint16(msg.AtAssert(0, HeaderLen)[2:4])
}
