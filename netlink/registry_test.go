//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// AllocPID never hands out the same PID twice while both leases are live.
func TestRegistryAllocPIDUnique(t *testing.T) {
	r := NewRegistry()

	seen := make(map[uint32]struct{})
	for range 100 {
		pid, err := r.AllocPID()
		require.NoError(t, err)
		_, duplicate := seen[pid]
		require.False(t, duplicate, "PID %#x leased twice", pid)
		seen[pid] = struct{}{}
	}
}

// The low bits of every PID are the Unix process ID.
func TestRegistryPIDComposition(t *testing.T) {
	r := NewRegistry()

	first, err := r.AllocPID()
	require.NoError(t, err)
	assert.Equal(t, uint32(os.Getpid())&processMask, first&processMask)
	assert.Equal(t, uint32(0), first>>processBits)

	second, err := r.AllocPID()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), second>>processBits)
}

// Releasing a PID makes its slot available again.
func TestRegistryReleaseReusesSlot(t *testing.T) {
	r := NewRegistry()

	first, err := r.AllocPID()
	require.NoError(t, err)
	second, err := r.AllocPID()
	require.NoError(t, err)

	r.ReleasePID(first)
	reused, err := r.AllocPID()
	require.NoError(t, err)
	assert.Equal(t, first, reused)
	assert.NotEqual(t, second, reused)
}

// Allocating beyond pool capacity fails with ENOBUFS, not undefined
// behavior, and the pool recovers once a PID is released.
func TestRegistryExhaustion(t *testing.T) {
	r := NewRegistry()

	pids := make([]uint32, 0, maxSockets)
	for range maxSockets {
		pid, err := r.AllocPID()
		require.NoError(t, err)
		pids = append(pids, pid)
	}

	_, err := r.AllocPID()
	require.True(t, errors.Is(err, unix.ENOBUFS))

	r.ReleasePID(pids[17])
	pid, err := r.AllocPID()
	require.NoError(t, err)
	assert.Equal(t, pids[17], pid)
}

// Double release is a programming-contract violation.
func TestRegistryDoubleReleasePanics(t *testing.T) {
	r := NewRegistry()

	pid, err := r.AllocPID()
	require.NoError(t, err)
	r.ReleasePID(pid)

	assert.Panics(t, func() { r.ReleasePID(pid) })
}

// Sequence numbers increase monotonically.
func TestRegistryNextSeq(t *testing.T) {
	r := NewRegistry()

	first := r.NextSeq()
	second := r.NextSeq()
	assert.Equal(t, first+1, second)
}
