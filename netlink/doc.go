//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

// Package netlink is a client for the Linux netlink control protocol,
// with an emphasis on Generic Netlink.
//
// # Overview
//
// The package provides, bottom up:
//
//   - a process-wide PID allocator ([*Registry]) that leases the unique
//     32-bit address every netlink socket must bind to
//
//   - message construction ([PutNlmsghdr], [PutGenlmsghdr], the PutU*
//     family, [PutString], [PutNested]) into a
//     [github.com/d548/openflow/buffer.Buffer], with all 4-byte
//     alignment and padding handled internally
//
//   - attribute access ([Attr]) and policy-driven validation of
//     incoming attribute streams ([ParsePolicy])
//
//   - the socket layer ([Socket]) with raw [*Socket.Send] and
//     [*Socket.Recv] plus the reliable [*Socket.Transact] request/reply
//     operation
//
//   - dynamic Generic Netlink family numbering ([GenlFamily])
//
// # Reliability
//
// Netlink silently drops replies when the receive buffer is full,
// signalling the loss to the next receive call via ENOBUFS.
// [*Socket.Transact] hides this: it forces an acknowledgement request
// onto every outgoing message, matches replies by sequence number, and
// resends the request when a reply was dropped. The price is that
// requests must be idempotent; see [*Socket.Transact].
//
// # Blocking behavior
//
// [*Socket.Transact] is the only operation in this package (and in this
// library) that blocks awaiting I/O. [*Socket.Send] and [*Socket.Recv]
// take a wait flag; with wait=false they return unix.EAGAIN instead of
// suspending, so an external poll loop can drive them via [*Socket.Fd].
package netlink
