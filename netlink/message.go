//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"math"

	"github.com/bassosimone/runtimex"
	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// Sizes of the fixed headers at the start of netlink messages.
const (
	// MsgHdrLen is the size of the netlink message header.
	MsgHdrLen = unix.NLMSG_HDRLEN

	// GenlHdrLen is the size of the Generic Netlink header that
	// follows the netlink message header.
	GenlHdrLen = unix.GENL_HDRLEN

	// AttrHdrLen is the size of an attribute header.
	AttrHdrLen = unix.NLA_HDRLEN
)

// Align rounds n up to the 4-byte netlink alignment boundary.
//
// All padding arithmetic in this package goes through Align so that no
// caller performs it directly.
func Align(n int) int {
	return (n + unix.NLA_ALIGNTO - 1) &^ (unix.NLA_ALIGNTO - 1)
}

// Nlmsghdr is a view of the netlink message header at the start of a
// buffer. Mutations write through to the underlying buffer, which is
// how the length field is finalized in place at send time.
type Nlmsghdr struct {
	b []byte
}

// MsgNlmsghdr returns the [Nlmsghdr] at the head of msg.
//
// Panics unless msg is at least as large as a netlink message header.
func MsgNlmsghdr(msg *buffer.Buffer) Nlmsghdr {
	return Nlmsghdr{b: msg.AtAssert(0, MsgHdrLen)}
}

// Len returns the nlmsg_len field.
func (h Nlmsghdr) Len() uint32 { return native.Uint32(h.b[0:4]) }

// SetLen sets the nlmsg_len field.
func (h Nlmsghdr) SetLen(v uint32) { native.PutUint32(h.b[0:4], v) }

// Type returns the nlmsg_type field.
func (h Nlmsghdr) Type() uint16 { return native.Uint16(h.b[4:6]) }

// SetType sets the nlmsg_type field.
func (h Nlmsghdr) SetType(v uint16) { native.PutUint16(h.b[4:6], v) }

// Flags returns the nlmsg_flags field.
func (h Nlmsghdr) Flags() uint16 { return native.Uint16(h.b[6:8]) }

// SetFlags sets the nlmsg_flags field.
func (h Nlmsghdr) SetFlags(v uint16) { native.PutUint16(h.b[6:8], v) }

// Seq returns the nlmsg_seq field.
func (h Nlmsghdr) Seq() uint32 { return native.Uint32(h.b[8:12]) }

// SetSeq sets the nlmsg_seq field.
func (h Nlmsghdr) SetSeq(v uint32) { native.PutUint32(h.b[8:12], v) }

// Pid returns the nlmsg_pid field.
func (h Nlmsghdr) Pid() uint32 { return native.Uint32(h.b[12:16]) }

// SetPid sets the nlmsg_pid field.
func (h Nlmsghdr) SetPid(v uint32) { native.PutUint32(h.b[12:16], v) }

// Genlmsghdr is a view of the Generic Netlink header just past the
// netlink message header.
type Genlmsghdr struct {
	b []byte
}

// MsgGenlmsghdr returns the [Genlmsghdr] of msg, or false if msg is not
// large enough to contain both a netlink and a Generic Netlink header.
func MsgGenlmsghdr(msg *buffer.Buffer) (Genlmsghdr, bool) {
	b, ok := msg.At(MsgHdrLen, GenlHdrLen)
	return Genlmsghdr{b: b}, ok
}

// Cmd returns the Generic Netlink command.
func (h Genlmsghdr) Cmd() uint8 { return h.b[0] }

// Version returns the family-specific version number.
func (h Genlmsghdr) Version() uint8 { return h.b[1] }

// MsgNlmsgerr reports whether msg is an NLMSG_ERROR message. If it is,
// code is 0 for an ACK, otherwise a positive errno magnitude; a
// truncated or nonsensical error payload yields unix.EPROTO.
//
// msg must be at least as large as a netlink message header.
func MsgNlmsgerr(msg *buffer.Buffer) (code int, ok bool) {
	if MsgNlmsghdr(msg).Type() != unix.NLMSG_ERROR {
		return 0, false
	}
	// struct nlmsgerr is the embedded errno followed by a copy of the
	// offending message header.
	code = int(unix.EPROTO)
	if payload, present := msg.At(MsgHdrLen, 4+MsgHdrLen); present {
		if embedded := int32(native.Uint32(payload[0:4])); embedded <= 0 && embedded > math.MinInt32 {
			code = int(-embedded)
		}
	}
	return code, true
}

// MsgReserve ensures that msg has room for at least size bytes plus
// netlink padding at its tail end, reallocating and copying its data if
// necessary.
func MsgReserve(msg *buffer.Buffer, size int) {
	msg.Reserve(Align(size))
}

// PutNlmsghdr appends a netlink message header to msg, which must be
// initially empty. The sock argument supplies the PID, and its registry
// the sequence number, for proper routing of replies.
// expectedPayload should be an estimate of the number of payload bytes
// to be supplied; if the size of the payload is unknown a value of 0 is
// acceptable.
//
// typ is ordinarily an enumerated value specific to the netlink
// protocol (e.g. RTM_NEWLINK, for NETLINK_ROUTE). For Generic Netlink,
// typ is the family number obtained via [*GenlFamily.Number].
//
// flags is a bit-mask that indicates what kind of request is being
// made. It is often unix.NLM_F_REQUEST, commonly or'd with
// unix.NLM_F_ACK to request an acknowledgement.
//
// The nlmsg_len field is left at zero: [*Socket.Send] finalizes it to
// the buffer size at send time.
//
// [PutGenlmsghdr] is more convenient for composing a Generic Netlink
// message.
func PutNlmsghdr(msg *buffer.Buffer, sock *Socket, expectedPayload int, typ, flags uint16) {
	runtimex.Assert(msg.Size() == 0)
	MsgReserve(msg, MsgHdrLen+expectedPayload)
	hdr := Nlmsghdr{b: PutUninit(msg, MsgHdrLen)}
	hdr.SetType(typ)
	hdr.SetFlags(flags)
	hdr.SetSeq(sock.cfg.Registry.NextSeq())
	hdr.SetPid(sock.pid)
}

// PutGenlmsghdr appends a netlink message header and a Generic Netlink
// header to msg, which must be initially empty.
//
// family is the family number obtained via [*GenlFamily.Number]. cmd is
// an enumerated value specific to the family (e.g.
// unix.CTRL_CMD_NEWFAMILY for the unix.GENL_ID_CTRL family). version is
// a version number specific to the family and command (often 1).
func PutGenlmsghdr(msg *buffer.Buffer, sock *Socket, expectedPayload int,
	family int, flags uint16, cmd, version uint8) {
	PutNlmsghdr(msg, sock, GenlHdrLen+expectedPayload, uint16(family), flags)
	runtimex.Assert(msg.Size() == MsgHdrLen)
	b := PutUninit(msg, GenlHdrLen)
	b[0] = cmd
	b[1] = version
}

// PutUninit appends size bytes, plus netlink padding if needed, to the
// tail end of msg and returns the unpadded region. The region and its
// padding are zeroed.
func PutUninit(msg *buffer.Buffer, size int) []byte {
	return msg.PutUninit(Align(size))[:size]
}

// Put appends data, plus netlink padding if needed, to the tail end of
// msg.
func Put(msg *buffer.Buffer, data []byte) {
	copy(PutUninit(msg, len(data)), data)
}

// PutUnspecUninit appends an attribute of the given type with room for
// size payload bytes, plus netlink padding if needed, to the tail end
// of msg, and returns the zeroed payload region.
func PutUnspecUninit(msg *buffer.Buffer, typ uint16, size int) []byte {
	totalSize := AttrHdrLen + size
	runtimex.Assert(Align(totalSize) <= int(^uint16(0)))
	b := PutUninit(msg, totalSize)
	native.PutUint16(b[0:2], uint16(totalSize))
	native.PutUint16(b[2:4], typ)
	return b[AttrHdrLen:]
}

// PutUnspec appends an attribute of the given type with the given bytes
// as its payload to the tail end of msg.
func PutUnspec(msg *buffer.Buffer, typ uint16, data []byte) {
	copy(PutUnspecUninit(msg, typ, len(data)), data)
}

// PutFlag appends an attribute of the given type and no payload to msg.
// (Some netlink protocols use the presence or absence of an attribute
// as a Boolean flag.)
func PutFlag(msg *buffer.Buffer, typ uint16) {
	PutUnspec(msg, typ, nil)
}

// PutU8 appends an attribute with the given 8-bit value to msg.
func PutU8(msg *buffer.Buffer, typ uint16, value uint8) {
	PutUnspecUninit(msg, typ, 1)[0] = value
}

// PutU16 appends an attribute with the given 16-bit value to msg.
func PutU16(msg *buffer.Buffer, typ uint16, value uint16) {
	native.PutUint16(PutUnspecUninit(msg, typ, 2), value)
}

// PutU32 appends an attribute with the given 32-bit value to msg.
func PutU32(msg *buffer.Buffer, typ uint16, value uint32) {
	native.PutUint32(PutUnspecUninit(msg, typ, 4), value)
}

// PutU64 appends an attribute with the given 64-bit value to msg.
func PutU64(msg *buffer.Buffer, typ uint16, value uint64) {
	native.PutUint64(PutUnspecUninit(msg, typ, 8), value)
}

// PutString appends an attribute with the given string value, including
// its null terminator, to msg.
func PutString(msg *buffer.Buffer, typ uint16, value string) {
	b := PutUnspecUninit(msg, typ, len(value)+1)
	copy(b, value)
}

// PutNested appends an attribute of the given type whose payload is the
// buffered netlink message nested. The nlmsg_len field of nested is
// finalized to its buffer size before embedding.
func PutNested(msg *buffer.Buffer, typ uint16, nested *buffer.Buffer) {
	MsgNlmsghdr(nested).SetLen(uint32(nested.Size()))
	PutUnspec(msg, typ, nested.Bytes())
}
