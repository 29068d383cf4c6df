//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package vconn

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

// newStreamPair returns two connected stream descriptors, both ends
// non-blocking, wrapped so the left end is an active vconn under test
// and the right end is the raw peer descriptor.
func newStreamPair(t *testing.T, cfg *Config) (*tcpVconn, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("set nonblocking: %v", err)
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		t.Fatalf("set nonblocking: %v", err)
	}
	conn := &tcpVconn{cfg: cfg, fd: fds[0]}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return conn, fds[1]
}

// newFramedMessage returns a finalized message of the given type with
// payloadLen payload bytes holding a deterministic pattern.
func newFramedMessage(typ uint16, payloadLen int) *buffer.Buffer {
	msg := buffer.New(HeaderLen + payloadLen)
	PutHeader(msg, typ)
	region := msg.PutUninit(payloadLen)
	for i := range region {
		region[i] = byte(i)
	}
	FinalizeLength(msg)
	return msg
}

// writeAll writes p to fd, retrying on partial writes, draining via the
// peer being read elsewhere. The descriptors in these tests buffer far
// more than the test payloads, so this never actually spins.
func writeAll(t *testing.T, fd int, p []byte) {
	t.Helper()
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err != nil {
			t.Fatalf("write: %v", err)
		}
		p = p[n:]
	}
}
