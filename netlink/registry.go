//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"os"
	"time"

	"github.com/bassosimone/runtimex"
	"golang.org/x/sys/unix"
)

// Every netlink socket must be bound to a unique 32-bit PID. By
// convention, programs that have a single netlink socket use their Unix
// process ID as PID, and programs with multiple netlink sockets add a
// unique per-socket identifier in the bits above the Unix process ID.
//
// The kernel has netlink PID 0.

// Parameters for how many bits in the PID come from the Unix process ID
// and how many are unique per-socket.
const (
	socketBits = 10
	maxSockets = 1 << socketBits

	processBits = 32 - socketBits
	processMask = uint32(1<<processBits - 1)
)

// Registry holds the state shared by every netlink socket in a process:
// the bit vector of leased socket identifiers and the sequence counter
// for outgoing requests.
//
// Sequence numbers are unique process-wide, to avoid a hypothetical
// race: send request, close socket, open new socket that reuses the old
// socket's PID value, send request on new socket, receive reply from
// the kernel to the old socket but with same PID and sequence number.
//
// A Registry takes no locks. The caller must ensure that a single
// goroutine uses it, or provide external exclusion; this is a
// precondition, not something the library enforces.
type Registry struct {
	// avail is the bit vector of leased socket identifiers. A bit is
	// set iff its slot's PID is currently leased to one live socket.
	avail [maxSockets / 32]uint32

	// nextSeq is the last sequence number handed out.
	nextSeq uint32
}

// NewRegistry returns a [*Registry] with the sequence counter seeded
// from the process ID and the current time, so that sequence numbers
// from a previous incarnation of this process are unlikely to collide
// with ours.
func NewRegistry() *Registry {
	return &Registry{
		nextSeq: uint32(os.Getpid()) ^ uint32(time.Now().Unix()),
	}
}

// NextSeq returns the next process-wide sequence number.
func (r *Registry) NextSeq() uint32 {
	r.nextSeq++
	return r.nextSeq
}

// AllocPID leases a new netlink PID, composed from the Unix process ID
// in the low bits and the first free slot index in the high bits.
//
// Returns unix.ENOBUFS when all slots are leased.
func (r *Registry) AllocPID() (uint32, error) {
	for i := 0; i < maxSockets; i++ {
		if r.avail[i/32]&(1<<(i%32)) == 0 {
			r.avail[i/32] |= 1 << (i % 32)
			return uint32(os.Getpid())&processMask | uint32(i)<<processBits, nil
		}
	}
	return 0, unix.ENOBUFS
}

// ReleasePID makes the given PID available for reuse.
//
// Panics if the PID is not currently leased: a double release is a
// programming error, not a recoverable condition.
func (r *Registry) ReleasePID(pid uint32) {
	slot := pid >> processBits
	runtimex.Assert(r.avail[slot/32]&(1<<(slot%32)) != 0)
	r.avail[slot/32] &^= 1 << (slot % 32)
}
