// SPDX-License-Identifier: GPL-3.0-or-later

package openflow

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way. For example, one netlink transaction: send the request, then keep
// receiving until the matching reply arrives.
//
// We recommend using a span ID for uniquely identifying spans: attach it
// to a logger with [*slog.Logger.With] and every log entry emitted during
// the span will carry it.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
