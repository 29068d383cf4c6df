//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package vconn

import (
	"time"

	"github.com/d548/openflow"
)

// Config holds common configuration for vconn operations.
//
// Pass this to [Open] to pre-wire dependencies. All fields have
// sensible defaults set by [NewConfig].
type Config struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [openflow.DefaultErrClassifier].
	ErrClassifier openflow.ErrClassifier

	// Logger is the [openflow.SLogger] to use.
	//
	// Set by [NewConfig] to [openflow.DefaultSLogger].
	Logger openflow.SLogger

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
		TimeNow:       time.Now,
	}
}
