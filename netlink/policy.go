//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"bytes"
	"math"

	"github.com/bassosimone/runtimex"
	"github.com/d548/openflow/buffer"
)

// AttrType is the expected class of an attribute payload, used by
// [ParsePolicy] to pick default length bounds and content checks.
type AttrType int

const (
	// NoAttr marks a policy slot with no attribute declared.
	NoAttr AttrType = iota

	// U8 is a fixed-width 8-bit attribute.
	U8

	// U16 is a fixed-width 16-bit attribute.
	U16

	// U32 is a fixed-width 32-bit attribute.
	U32

	// U64 is a fixed-width 64-bit attribute.
	U64

	// String is a null-terminated string attribute.
	String

	// Flag is an attribute whose mere presence carries the value.
	Flag

	// Nested is an attribute whose payload is itself a netlink message.
	Nested

	nAttrTypes
)

// Default minimum and maximum payload sizes for each type of attribute.
var attrLenRange = [nAttrTypes][2]int{
	NoAttr: {0, math.MaxInt},
	U8:     {1, 1},
	U16:    {2, 2},
	U32:    {4, 4},
	U64:    {8, 8},
	String: {1, math.MaxInt},
	Flag:   {0, math.MaxInt},
	Nested: {MsgHdrLen, math.MaxInt},
}

// Policy specifies how the attribute whose type equals its index in the
// policy slice is validated. A Policy is consulted only at parse time
// and never mutated.
type Policy struct {
	// Type is the expected class of the attribute payload.
	Type AttrType

	// MinLen, if nonzero, overrides the class's default minimum
	// payload length.
	MinLen int

	// MaxLen, if nonzero, overrides the class's default maximum
	// payload length.
	MaxLen int

	// Optional indicates that the attribute may be absent.
	Optional bool
}

// ParsePolicy parses the Generic Netlink payload of msg as a flat
// sequence of netlink attributes. policy[i] specifies how the attribute
// with type i is validated; the returned slice holds, at index i, a
// view of that attribute, or nil if absent.
//
// The walk is a single linear pass starting just past the netlink and
// Generic Netlink headers. Attributes whose type is out of range or not
// declared in the policy are silently skipped. When an attribute type
// occurs more than once, the last occurrence wins.
//
// Returns false if any attribute fails validation or if a required
// attribute is absent. Every rejection is logged at debug level through
// cfg.Logger before returning.
func ParsePolicy(cfg *Config, msg *buffer.Buffer, policy []Policy) ([]Attr, bool) {
	attrs := make([]Attr, len(policy))

	nRequired := 0
	for i := range policy {
		runtimex.Assert(policy[i].Type < nAttrTypes)
		if policy[i].Type != NoAttr && policy[i].Type != Flag && !policy[i].Optional {
			nRequired++
		}
	}

	if _, ok := msg.At(MsgHdrLen+GenlHdrLen, 0); !ok {
		cfg.Logger.Debug("netlinkParsePolicy: missing headers")
		return nil, false
	}
	data := msg.Bytes()

	for offset := MsgHdrLen + GenlHdrLen; offset < len(data); {
		rest := data[offset:]
		if len(rest) < AttrHdrLen {
			cfg.Logger.Debug("netlinkParsePolicy: truncated attr header",
				"offset", offset, "bytesLeft", len(rest))
			return nil, false
		}
		attr := Attr(rest)

		// Make sure its claimed length is plausible.
		if attr.declaredLen() < AttrHdrLen {
			cfg.Logger.Debug("netlinkParsePolicy: attr shorter than its own header",
				"offset", offset, "declaredLen", attr.declaredLen())
			return nil, false
		}
		payloadLen := attr.declaredLen() - AttrHdrLen
		if AttrHdrLen+Align(payloadLen) > len(rest) {
			cfg.Logger.Debug("netlinkParsePolicy: attr overruns buffer",
				"offset", offset, "attrType", attr.Type(),
				"alignedLen", Align(payloadLen), "bytesLeft", len(rest)-AttrHdrLen)
			return nil, false
		}

		typ := int(attr.Type())
		if typ < len(policy) && policy[typ].Type != NoAttr {
			p := &policy[typ]

			// Validate length and content.
			minLen, maxLen := p.MinLen, p.MaxLen
			if minLen == 0 {
				minLen = attrLenRange[p.Type][0]
			}
			if maxLen == 0 {
				maxLen = attrLenRange[p.Type][1]
			}
			if payloadLen < minLen || payloadLen > maxLen {
				cfg.Logger.Debug("netlinkParsePolicy: attr length out of range",
					"offset", offset, "attrType", typ, "length", payloadLen,
					"minLen", minLen, "maxLen", maxLen)
				return nil, false
			}
			if p.Type == String {
				payload := rest[AttrHdrLen : AttrHdrLen+payloadLen]
				if payload[payloadLen-1] != 0 {
					cfg.Logger.Debug("netlinkParsePolicy: string attr lacks null terminator",
						"offset", offset, "attrType", typ)
					return nil, false
				}
				if bytes.IndexByte(payload[:payloadLen-1], 0) >= 0 {
					cfg.Logger.Debug("netlinkParsePolicy: string attr lies about its length",
						"offset", offset, "attrType", typ)
					return nil, false
				}
			}
			if p.Type != Flag && !p.Optional && attrs[typ] == nil {
				runtimex.Assert(nRequired > 0)
				nRequired--
			}
			attrs[typ] = attr[:AttrHdrLen+payloadLen]
		} else {
			// Skip attribute types that we don't care about.
		}
		offset += AttrHdrLen + Align(payloadLen)
	}
	if nRequired > 0 {
		cfg.Logger.Debug("netlinkParsePolicy: required attrs missing", "count", nRequired)
		return nil, false
	}
	return attrs, true
}
