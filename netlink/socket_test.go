//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"testing"

	"github.com/d548/openflow/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// These tests exercise the socket layer against the real kernel and
// skip when the environment does not allow netlink sockets.

func TestNewSocket(t *testing.T) {
	cfg, _ := newTestConfig()

	sock, err := NewSocket(cfg, unix.NETLINK_ROUTE, 0, 0, 0)
	mustSkipNetlink(t, err)
	require.NoError(t, err)
	defer sock.Close()

	assert.GreaterOrEqual(t, sock.Fd(), 0)
	assert.NotZero(t, sock.PID())
}

func TestNewSocketBufferOverrides(t *testing.T) {
	cfg, _ := newTestConfig()

	sock, err := NewSocket(cfg, unix.NETLINK_ROUTE, 0, 1<<16, 1<<16)
	mustSkipNetlink(t, err)
	require.NoError(t, err)
	defer sock.Close()
}

// Closing a socket releases its PID for reuse.
func TestSocketCloseReleasesPID(t *testing.T) {
	cfg, _ := newTestConfig()

	sock, err := NewSocket(cfg, unix.NETLINK_ROUTE, 0, 0, 0)
	mustSkipNetlink(t, err)
	require.NoError(t, err)
	pid := sock.PID()
	require.NoError(t, sock.Close())

	again, err := NewSocket(cfg, unix.NETLINK_ROUTE, 0, 0, 0)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, pid, again.PID())
}

// Close is a no-op on a nil socket.
func TestSocketCloseNil(t *testing.T) {
	var sock *Socket
	assert.NoError(t, sock.Close())
}

// A non-blocking receive on an empty queue yields EAGAIN rather than
// suspending.
func TestSocketRecvNoWait(t *testing.T) {
	cfg, _ := newTestConfig()

	sock, err := NewSocket(cfg, unix.NETLINK_ROUTE, 0, 0, 0)
	mustSkipNetlink(t, err)
	require.NoError(t, err)
	defer sock.Close()

	_, err = sock.Recv(false)
	assert.ErrorIs(t, err, unix.EAGAIN)
}

// A full request/reply round trip against the kernel: ask NETLINK_ROUTE
// for a dump start with a bogus family and expect either data or a NAK,
// but never a hang or a mismatched reply.
func TestSocketTransact(t *testing.T) {
	cfg, _ := newTestConfig()

	sock, err := NewSocket(cfg, unix.NETLINK_ROUTE, 0, 0, 0)
	mustSkipNetlink(t, err)
	require.NoError(t, err)
	defer sock.Close()

	// RTM_GETLINK without NLM_F_DUMP and without a valid ifinfomsg
	// payload: the kernel NAKs it, which exercises the full transact
	// path including error-envelope translation.
	request := buffer.New(0)
	PutNlmsghdr(request, sock, 0, unix.RTM_GETLINK, unix.NLM_F_REQUEST)
	_, err = sock.Transact(request)
	assert.Error(t, err)
}
