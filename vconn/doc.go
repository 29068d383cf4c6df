//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

// Package vconn provides virtual connections: a pluggable transport
// abstraction carrying length-prefixed protocol messages, currently
// over TCP.
//
// # Connection kinds
//
// An active connection ("tcp:host[:port]") initiates a stream to a
// single peer and exchanges messages with [Vconn.Recv] and
// [Vconn.Send]. A passive connection ("ptcp:[port]") only listens; its
// [Vconn.Accept] yields a new active connection per peer. Capabilities
// a connection does not have return unix.EOPNOTSUPP.
//
// # Poll-driven I/O
//
// Descriptors are non-blocking and this package never suspends. Recv,
// Send, and Accept return unix.EAGAIN whenever the operation cannot
// complete right now; the caller is expected to run an external poll
// loop, declaring each connection's interest with [Vconn.PrePoll]
// before blocking and handing back the observed events with
// [Vconn.PostPoll] afterwards. PostPoll is where a pending partial
// write drains.
//
// # Framing
//
// Every message on the wire starts with the fixed [HeaderLen]-byte
// header: the total message length in network byte order, then the
// message type. [Vconn.Recv] reassembles one full message regardless of
// how the stream fragments it; [Vconn.Send] accepts at most one
// message until a partial write has drained.
package vconn
