// SPDX-License-Identifier: GPL-3.0-or-later

// Package openflow provides low-level networking primitives for an
// OpenFlow-style switch control plane.
//
// # Structure
//
// The functionality lives in subpackages:
//
//   - [github.com/d548/openflow/buffer]: growable message buffers with
//     the header-overlay and front-truncation semantics the protocol
//     code relies on
//
//   - [github.com/d548/openflow/netlink]: a client for the Linux
//     Generic Netlink control protocol: message construction with
//     strict 4-byte alignment, attribute (TLV) encoding and policy
//     driven parsing, a process-wide socket PID allocator, and a
//     reliable request/reply transaction layer over the inherently
//     lossy netlink transport
//
//   - [github.com/d548/openflow/vconn]: a pluggable virtual-connection
//     abstraction carrying length-prefixed protocol messages over TCP
//     with non-blocking, poll-driven I/O and partial-message reassembly
//
// This root package holds only the small surface the subpackages
// share: the [SLogger] logging abstraction, the [ErrClassifier] used
// to label errors in structured logs, and [NewSpanID] for correlating
// log events of one operation.
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible
// with [log/slog]). By default logging is disabled: the library never
// writes to stdout or stderr on its own. Protocol violations, dropped
// replies, and resends are logged at debug level before the
// corresponding error propagates to the caller.
//
// # Errors
//
// Errors are OS errno values from [golang.org/x/sys/unix], so callers
// can test outcomes with [errors.Is]: for example unix.EAGAIN for
// "retry after the next poll" and unix.EPROTO for protocol
// violations. Programming-contract violations (reading an attribute as
// the wrong type, releasing a PID twice) panic instead of returning an
// error: they indicate an invariant violation, not an external
// condition.
//
// # Concurrency
//
// The library is single-threaded by design. It takes no locks; state
// shared across sockets (the PID bitmap and the sequence counter) is
// confined to an explicit registry object whose single-writer
// precondition is documented where it is defined. Only netlink
// transactions block; every other I/O operation returns unix.EAGAIN
// so an external poll loop can drive it.
package openflow
