//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package netlink

import (
	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// GenlFamily resolves a Generic Netlink family name (e.g. "openflow")
// to the numeric family id assigned by the kernel. Families are
// numbered dynamically, so this lookup is the bootstrap step before any
// family-specific messages can be composed.
//
// The result of the first lookup, success or failure, is cached for the
// lifetime of the GenlFamily.
type GenlFamily struct {
	// Name is the family name to resolve.
	Name string

	number   uint16
	err      error
	resolved bool
}

// Number returns the numeric family id for f.Name.
func (f *GenlFamily) Number(cfg *Config) (uint16, error) {
	if !f.resolved {
		f.number, f.err = lookupGenlFamily(cfg, f.Name)
		f.resolved = true
	}
	return f.number, f.err
}

// familyPolicy validates a CTRL_CMD_GETFAMILY reply. We only care about
// the assigned family id.
func familyPolicy() []Policy {
	// x/sys/unix does not export CTRL_ATTR_MAX; the kernel defines it
	// as the highest control attribute, which is CTRL_ATTR_OP.
	policy := make([]Policy, unix.CTRL_ATTR_OP+1)
	policy[unix.CTRL_ATTR_FAMILY_ID] = Policy{Type: U16}
	return policy
}

func lookupGenlFamily(cfg *Config, name string) (uint16, error) {
	sock, err := NewSocket(cfg, unix.NETLINK_GENERIC, 0, 0, 0)
	if err != nil {
		return 0, err
	}
	defer sock.Close()

	request := buffer.New(0)
	PutGenlmsghdr(request, sock, 0, unix.GENL_ID_CTRL, unix.NLM_F_REQUEST,
		unix.CTRL_CMD_GETFAMILY, 1)
	PutString(request, unix.CTRL_ATTR_FAMILY_NAME, name)

	reply, err := sock.Transact(request)
	if err != nil {
		return 0, err
	}
	if reply == nil {
		// A plain ACK carries no family id.
		return 0, unix.EPROTO
	}

	attrs, ok := ParsePolicy(cfg, reply, familyPolicy())
	if !ok {
		return 0, unix.EPROTO
	}
	number := attrs[unix.CTRL_ATTR_FAMILY_ID].U16()
	if number == 0 {
		return 0, unix.EPROTO
	}
	return number, nil
}
