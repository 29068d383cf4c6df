//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"encoding/binary"
	"unsafe"
)

// Netlink headers and attributes are encoded in the host's native byte
// order, unlike most wire protocols.
var native = nativeEndian()

func nativeEndian() binary.ByteOrder {
	var x uint32 = 0x01020304
	if *(*byte)(unsafe.Pointer(&x)) == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
