// SPDX-License-Identifier: GPL-3.0-or-later

package openflow

import (
	"testing"

	"github.com/bassosimone/errclass"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestDefaultErrClassifier(t *testing.T) {
	// Should return empty string regardless of the error
	assert.Equal(t, "", DefaultErrClassifier.Classify(nil))
	assert.Equal(t, "", DefaultErrClassifier.Classify(unix.EAGAIN))
}

func TestErrClassifierFunc(t *testing.T) {
	// Adapting errclass.New should classify errno values
	classifier := ErrClassifierFunc(errclass.New)
	assert.NotEqual(t, "", classifier.Classify(unix.ECONNRESET))
}
