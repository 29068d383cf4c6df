//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package vconn

import (
	"strings"

	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// Want declares which operations a caller intends to perform on a
// connection, so that [Vconn.PrePoll] can translate them into poll
// events.
type Want int

const (
	// WantRecv declares intent to call [Vconn.Recv].
	WantRecv Want = 1 << iota

	// WantSend declares intent to call [Vconn.Send].
	WantSend

	// WantAccept declares intent to call [Vconn.Accept].
	WantAccept
)

// Vconn is a virtual connection: one transport endpoint carrying
// length-prefixed messages. Implementations are either active (a
// stream to one peer) or passive (a listener yielding new active
// connections); operations outside an implementation's capability set
// return unix.EOPNOTSUPP.
//
// A Vconn never suspends. Recv, Send, and Accept return unix.EAGAIN
// when they cannot make progress; the caller drives the connection from
// an external poll loop bracketed by PrePoll and PostPoll.
type Vconn interface {
	// Close closes the connection and releases its descriptor.
	Close() error

	// PrePoll fills pfd with the connection's descriptor and the poll
	// events implied by want (plus any internal interest, such as
	// write readiness while a partial send is pending). It reports
	// whether the caller should skip polling and retry immediately.
	PrePoll(want Want, pfd *unix.PollFd) bool

	// PostPoll performs deferred I/O after a poll round, given the
	// events the poll observed. It may clear event bits that it has
	// consumed and may set unix.POLLERR on a hard failure.
	PostPoll(revents *int16)

	// Recv returns the next complete message, unix.EAGAIN if one is
	// not fully buffered yet, io.EOF at a clean end of stream, or
	// unix.EPROTO if the peer violated the framing.
	Recv() (*buffer.Buffer, error)

	// Send transmits msg, taking ownership of it on success. While a
	// previous partial write is still pending it returns unix.EAGAIN
	// and ownership stays with the caller.
	Send(msg *buffer.Buffer) error

	// Accept returns the next pending connection on a passive
	// endpoint, or unix.EAGAIN if none is pending.
	Accept() (Vconn, error)
}

// Open opens a virtual connection named by a scheme-prefixed address:
//
//	tcp:host[:port]   active connection to host
//	ptcp:[port]       passive listener on all interfaces
//
// The port defaults to [DefaultPort]. Unknown schemes yield
// unix.EAFNOSUPPORT and malformed names unix.EINVAL.
func Open(cfg *Config, name string) (Vconn, error) {
	scheme, suffix, ok := strings.Cut(name, ":")
	if !ok {
		cfg.Logger.Debug("vconnOpen: missing scheme", "name", name)
		return nil, unix.EINVAL
	}
	switch scheme {
	case "tcp":
		return tcpOpen(cfg, name, suffix)
	case "ptcp":
		return ptcpOpen(cfg, name, suffix)
	default:
		cfg.Logger.Debug("vconnOpen: unknown scheme", "name", name)
		return nil, unix.EAFNOSUPPORT
	}
}
