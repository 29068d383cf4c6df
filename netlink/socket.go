//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"errors"

	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// Socket is a netlink socket: one file descriptor bound to one leased
// netlink PID. It exposes raw send/receive plus the reliable
// [*Socket.Transact] request/reply operation.
//
// Construct with [NewSocket]; release both the descriptor and the PID
// with [*Socket.Close].
type Socket struct {
	cfg *Config
	fd  int
	pid uint32
}

// NewSocket creates a new netlink socket for the given netlink protocol
// (unix.NETLINK_ROUTE, unix.NETLINK_GENERIC, ...).
//
// If multicastGroup is nonzero, the new socket subscribes to the
// specified netlink multicast group. (A netlink socket may listen to an
// arbitrary number of multicast groups, but so far we only need one at
// a time.) Groups 1 through 32 are joined with the bind-time group
// bitmask, which old kernels support; higher group numbers use the
// NETLINK_ADD_MEMBERSHIP socket option, which has no upper limit but
// requires a newer kernel.
//
// Nonzero sndbuf or rcvbuf override the kernel default send or receive
// buffer size, respectively.
//
// On any failure the partially constructed socket is torn down (the
// descriptor closed, the leased PID released) before the underlying OS
// error is returned.
func NewSocket(cfg *Config, protocol, multicastGroup, sndbuf, rcvbuf int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, protocol)
	if err != nil {
		cfg.Logger.Debug("netlinkSocket: socket",
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		return nil, err
	}

	pid, err := cfg.Registry.AllocPID()
	if err != nil {
		cfg.Logger.Debug("netlinkSocket: pid space exhausted",
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		unix.Close(fd)
		return nil, err
	}
	sock := &Socket{cfg: cfg, fd: fd, pid: pid}

	fail := func(op string, err error) (*Socket, error) {
		cfg.Logger.Debug("netlinkSocket: "+op,
			"pid", pid, "err", err, "errClass", cfg.ErrClassifier.Classify(err))
		cfg.Registry.ReleasePID(pid)
		unix.Close(fd)
		return nil, err
	}

	if sndbuf != 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, sndbuf); err != nil {
			return fail("setsockopt(SO_SNDBUF)", err)
		}
	}
	if rcvbuf != 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, rcvbuf); err != nil {
			return fail("setsockopt(SO_RCVBUF)", err)
		}
	}

	// Bind the local address as our selected PID.
	local := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: pid}
	if multicastGroup > 0 && multicastGroup <= 32 {
		local.Groups = 1 << (multicastGroup - 1)
	}
	if err := unix.Bind(fd, local); err != nil {
		return fail("bind", err)
	}

	// Connect the remote address to the kernel (PID 0).
	remote := &unix.SockaddrNetlink{Family: unix.AF_NETLINK}
	if err := unix.Connect(fd, remote); err != nil {
		return fail("connect", err)
	}

	if multicastGroup > 32 {
		if err := unix.SetsockoptInt(fd, unix.SOL_NETLINK,
			unix.NETLINK_ADD_MEMBERSHIP, multicastGroup); err != nil {
			return fail("setsockopt(NETLINK_ADD_MEMBERSHIP)", err)
		}
	}

	cfg.Logger.Info("netlinkSocketOpen", "protocol", protocol, "pid", pid)
	return sock, nil
}

// Close closes the descriptor and releases the leased PID. It is a
// no-op on a nil socket.
func (s *Socket) Close() error {
	if s == nil {
		return nil
	}
	err := unix.Close(s.fd)
	s.cfg.Registry.ReleasePID(s.pid)
	s.cfg.Logger.Info("netlinkSocketClose", "pid", s.pid)
	return err
}

// Fd returns the socket's underlying file descriptor, for callers that
// multiplex it with an external poll loop.
func (s *Socket) Fd() int {
	return s.fd
}

// PID returns the netlink PID the socket is bound to.
func (s *Socket) PID() uint32 {
	return s.pid
}

// Send sends msg, which must contain a netlink message, to the kernel.
// The nlmsg_len field of msg is finalized to the buffer size before the
// message is sent.
//
// If wait is true the send blocks until buffer space is ready;
// otherwise a full send queue yields unix.EAGAIN. Interrupted system
// calls are transparently retried.
func (s *Socket) Send(msg *buffer.Buffer, wait bool) error {
	MsgNlmsghdr(msg).SetLen(uint32(msg.Size()))
	flags := 0
	if !wait {
		flags = unix.MSG_DONTWAIT
	}
	for {
		err := unix.Sendto(s.fd, msg.Bytes(), flags, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// rxProbeSize is the initial guess for [*Socket.Recv]'s sizing probe.
const rxProbeSize = 2048

// Recv receives one netlink message from the kernel. The caller owns
// the returned buffer.
//
// Netlink does not report a queued message's size without consuming it,
// so Recv is two-phase by design: it first peeks the datagram with a
// probe that doubles while the kernel reports truncation, then performs
// a second, non-blocking one-byte receive to actually dequeue it. Every
// message therefore costs at least two system calls.
//
// If wait is true Recv blocks until a message is ready; otherwise an
// empty receive queue yields unix.EAGAIN. A datagram shorter than a
// netlink message header yields unix.EPROTO.
func (s *Socket) Recv(wait bool) (*buffer.Buffer, error) {
	flags := unix.MSG_PEEK
	if !wait {
		flags |= unix.MSG_DONTWAIT
	}

	// Attempt to read the message. We don't know the size of the data
	// yet, so we take a guess. If we're wrong, we keep trying and
	// doubling the buffer size each time.
	bufsize := rxProbeSize
	buf := buffer.New(bufsize)
	for {
		region := buf.PutUninit(bufsize)
		n, _, recvflags, _, err := recvmsgIntr(s.fd, region, flags)
		if err != nil {
			return nil, err
		}
		if recvflags&unix.MSG_TRUNC != 0 {
			bufsize *= 2
			buf.Clear()
			continue
		}
		buf.Truncate(n)
		break
	}

	// We successfully read the message, so receive again to dequeue it.
	var tmp [1]byte
	if _, _, _, _, err := recvmsgIntr(s.fd, tmp[:], unix.MSG_DONTWAIT); err != nil {
		s.cfg.Logger.Debug("netlinkRecv: failed to remove message from socket",
			"err", err, "errClass", s.cfg.ErrClassifier.Classify(err))
	}

	if !msgOK(buf) {
		s.cfg.Logger.Debug("netlinkRecv: invalid message",
			"size", buf.Size(), "minSize", MsgHdrLen)
		return nil, unix.EPROTO
	}
	return buf, nil
}

// recvmsgIntr is [unix.Recvmsg] with transparent EINTR retry.
func recvmsgIntr(fd int, p []byte, flags int) (int, int, int, unix.Sockaddr, error) {
	for {
		n, oobn, recvflags, from, err := unix.Recvmsg(fd, p, nil, flags)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return n, oobn, recvflags, from, err
	}
}

// msgOK reports whether buf holds a complete netlink message header
// whose declared length is consistent with the received size.
func msgOK(buf *buffer.Buffer) bool {
	if buf.Size() < MsgHdrLen {
		return false
	}
	declared := int(MsgNlmsghdr(buf).Len())
	return declared >= MsgHdrLen && declared <= buf.Size()
}
