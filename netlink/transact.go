//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"errors"

	"github.com/d548/openflow"
	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// socketIO is the send/receive pair [*Socket.Transact] is layered on.
// It exists so that the retry loop can be exercised with injected
// faults.
type socketIO interface {
	send(msg *buffer.Buffer, wait bool) error
	recv(wait bool) (*buffer.Buffer, error)
}

var _ socketIO = &Socket{}

func (s *Socket) send(msg *buffer.Buffer, wait bool) error {
	return s.Send(msg, wait)
}

func (s *Socket) recv(wait bool) (*buffer.Buffer, error) {
	return s.Recv(wait)
}

// Transact sends request to the kernel and waits for a reply. On
// success the caller owns the returned buffer; a plain acknowledgement
// yields a nil buffer and a nil error.
//
// Bare netlink is an unreliable transport protocol. Transact layers
// reliable delivery and reply semantics on top of it.
//
// Sending a request to the kernel is reliable enough, because the
// kernel tells us when the message cannot be queued, and in that case
// we block until it can be delivered. Receiving the reply is the real
// problem: if the socket buffer is full when the kernel tries to send
// the reply, the reply is dropped, and the kernel sets a flag that
// makes the next receive fail with ENOBUFS. Transact reacts by
// resending the request.
//
// Caveats:
//
//  1. Netlink matches requests to replies by sequence number. Some
//     kernel netlink implementations fail to echo sequence numbers, and
//     Transact drops replies with non-matching sequence numbers, so
//     only a single request can be usefully transacted at a time.
//
//  2. Resending the request causes it to be re-executed by the kernel,
//     so requests must be idempotent.
func (s *Socket) Transact(request *buffer.Buffer) (*buffer.Buffer, error) {
	return transact(s.cfg, s, request)
}

func transact(cfg *Config, io socketIO, request *buffer.Buffer) (*buffer.Buffer, error) {
	logger := cfg.Logger
	spanID := openflow.NewSpanID()
	seq := MsgNlmsghdr(request).Seq()
	t0 := cfg.TimeNow()

	// Ensure that we get a reply even if this message doesn't
	// ordinarily call for one.
	hdr := MsgNlmsghdr(request)
	hdr.SetFlags(hdr.Flags() | unix.NLM_F_ACK)

	for {
		if err := io.send(request, true); err != nil {
			return nil, err
		}

		reply, err := io.recv(true)
		for err == nil && MsgNlmsghdr(reply).Seq() != seq {
			logger.Debug("netlinkTransact: ignoring reply with unexpected seq",
				"spanID", spanID, "seq", MsgNlmsghdr(reply).Seq(), "expectedSeq", seq)
			reply, err = io.recv(true)
		}
		if err != nil {
			if errors.Is(err, unix.ENOBUFS) {
				// A reply was dropped on the floor. Resend; the request
				// is idempotent per the caller contract.
				logger.Debug("netlinkTransact: receive buffer overflow, resending request",
					"spanID", spanID, "seq", seq)
				continue
			}
			return nil, err
		}

		if code, isErr := MsgNlmsgerr(reply); isErr {
			if code == 0 {
				logger.Debug("netlinkTransact: ack",
					"spanID", spanID, "seq", seq, "elapsed", cfg.TimeNow().Sub(t0))
				return nil, nil
			}
			err := unix.Errno(code)
			logger.Debug("netlinkTransact: received NAK",
				"spanID", spanID, "seq", seq,
				"err", err, "errClass", cfg.ErrClassifier.Classify(err))
			if err == unix.EAGAIN {
				// EAGAIN means "re-poll and retry" everywhere else in
				// this library, which is not what the kernel meant.
				err = unix.EPROTO
			}
			return nil, err
		}
		logger.Debug("netlinkTransact: reply",
			"spanID", spanID, "seq", seq, "elapsed", cfg.TimeNow().Sub(t0))
		return reply, nil
	}
}
