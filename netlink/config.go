//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"time"

	"github.com/d548/openflow"
)

// Config holds common configuration for netlink operations.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
//
// Sockets sharing a Config share its [*Registry], which is what makes
// their PIDs and sequence numbers unique among each other. Create one
// Config at process start and use it for every socket.
type Config struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [openflow.DefaultErrClassifier].
	ErrClassifier openflow.ErrClassifier

	// Logger is the [openflow.SLogger] to use.
	//
	// Set by [NewConfig] to [openflow.DefaultSLogger].
	Logger openflow.SLogger

	// Registry allocates PIDs and sequence numbers.
	//
	// Set by [NewConfig] to [NewRegistry].
	Registry *Registry

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier: openflow.DefaultErrClassifier,
		Logger:        openflow.DefaultSLogger(),
		Registry:      NewRegistry(),
		TimeNow:       time.Now,
	}
}
