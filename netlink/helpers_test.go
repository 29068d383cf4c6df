//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bassosimone/slogstub"
	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

// newTestConfig returns a Config with a capturing logger.
func newTestConfig() (*Config, *[]slog.Record) {
	cfg := NewConfig()
	logger, records := newCapturingLogger()
	cfg.Logger = logger
	return cfg, records
}

// newTestSocket returns a Socket good enough for composing messages:
// it has a PID and a registry but no usable descriptor.
func newTestSocket(cfg *Config) *Socket {
	return &Socket{cfg: cfg, fd: -1, pid: 42}
}

// newReplyHeader returns a message holding only a netlink header with
// the given type and sequence number, length finalized.
func newReplyHeader(typ uint16, seq uint32) *buffer.Buffer {
	msg := buffer.New(MsgHdrLen)
	msg.PutUninit(MsgHdrLen)
	hdr := MsgNlmsghdr(msg)
	hdr.SetLen(uint32(msg.Size()))
	hdr.SetType(typ)
	hdr.SetSeq(seq)
	return msg
}

// newErrorReply returns an NLMSG_ERROR message carrying the given errno
// (0 for an ACK) and echoing the given sequence number.
func newErrorReply(seq uint32, errno unix.Errno) *buffer.Buffer {
	msg := newReplyHeader(unix.NLMSG_ERROR, seq)
	payload := msg.PutUninit(4 + MsgHdrLen)
	native.PutUint32(payload[0:4], uint32(-int32(errno)))
	MsgNlmsghdr(msg).SetLen(uint32(msg.Size()))
	return msg
}

// mustSkipNetlink skips the test when the environment cannot create
// netlink sockets (e.g. a restricted sandbox).
func mustSkipNetlink(t *testing.T, err error) {
	t.Helper()
	for _, blocker := range []error{unix.EPERM, unix.EACCES, unix.EAFNOSUPPORT, unix.EPROTONOSUPPORT} {
		if err == blocker {
			t.Skipf("netlink not available: %v", err)
		}
	}
}
