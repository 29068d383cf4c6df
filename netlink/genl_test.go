//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// The Generic Netlink controller family is always present and always
// has the well-known number.
func TestGenlFamilyLookup(t *testing.T) {
	cfg, _ := newTestConfig()

	family := &GenlFamily{Name: "nlctrl"}
	number, err := family.Number(cfg)
	mustSkipNetlink(t, err)
	require.NoError(t, err)
	assert.Equal(t, uint16(unix.GENL_ID_CTRL), number)

	// The second lookup is served from the cache
	again, err := family.Number(cfg)
	require.NoError(t, err)
	assert.Equal(t, number, again)
}

// Looking up a family that does not exist fails with the kernel's NAK.
func TestGenlFamilyLookupMissing(t *testing.T) {
	cfg, _ := newTestConfig()

	family := &GenlFamily{Name: "openflow-no-such-family"}
	_, err := family.Number(cfg)
	mustSkipNetlink(t, err)
	assert.Error(t, err)
}

// A CTRL reply without the family id attribute is a protocol error.
// Parsed against a synthetic reply, no kernel needed.
func TestFamilyPolicyRejectsMissingID(t *testing.T) {
	cfg, _ := newTestConfig()

	msg := newGenlShell()
	PutString(msg, unix.CTRL_ATTR_FAMILY_NAME, "nlctrl")

	_, ok := ParsePolicy(cfg, msg, familyPolicy())
	assert.False(t, ok)
}

// A well-formed CTRL reply parses to the advertised number.
func TestFamilyPolicyParsesID(t *testing.T) {
	cfg, _ := newTestConfig()

	msg := newGenlShell()
	PutString(msg, unix.CTRL_ATTR_FAMILY_NAME, "nlctrl")
	PutU16(msg, unix.CTRL_ATTR_FAMILY_ID, unix.GENL_ID_CTRL)

	attrs, ok := ParsePolicy(cfg, msg, familyPolicy())
	require.True(t, ok)
	assert.Equal(t, uint16(unix.GENL_ID_CTRL), attrs[unix.CTRL_ATTR_FAMILY_ID].U16())
}
