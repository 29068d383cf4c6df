//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package vconn

import (
	"strconv"

	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// ptcpVconn is a passive TCP listener. It holds only the listening
// descriptor: it stages no messages because its sole capability is
// accepting new active connections.
type ptcpVconn struct {
	cfg *Config
	fd  int
}

var _ Vconn = &ptcpVconn{}

// ptcpOpen listens on "[port]" on all interfaces.
func ptcpOpen(cfg *Config, name, suffix string) (Vconn, error) {
	port := DefaultPort
	if suffix != "" {
		var err error
		if port, err = strconv.Atoi(suffix); err != nil || port < 0 || port > 65535 {
			cfg.Logger.Debug("vconnOpen: bad port", "name", name)
			return nil, unix.EINVAL
		}
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		cfg.Logger.Debug("vconnOpen: socket", "name", name,
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		return nil, err
	}

	fail := func(op string, err error) (Vconn, error) {
		cfg.Logger.Debug("vconnOpen: "+op, "name", name,
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		unix.Close(fd)
		return nil, err
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail("setsockopt(SO_REUSEADDR)", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		return fail("bind", err)
	}
	if err := unix.Listen(fd, 10); err != nil {
		return fail("listen", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return fail("set nonblocking", err)
	}

	cfg.Logger.Info("vconnOpen", "name", name)
	return &ptcpVconn{cfg: cfg, fd: fd}, nil
}

// Close implements [Vconn].
func (p *ptcpVconn) Close() error {
	p.cfg.Logger.Info("vconnClose")
	return unix.Close(p.fd)
}

// PrePoll implements [Vconn]. A listener only ever waits for
// new-connection readiness.
func (p *ptcpVconn) PrePoll(want Want, pfd *unix.PollFd) bool {
	pfd.Fd = int32(p.fd)
	if want&WantAccept != 0 {
		pfd.Events |= unix.POLLIN
	}
	return false
}

// PostPoll implements [Vconn]. Listeners have no deferred I/O.
func (p *ptcpVconn) PostPoll(revents *int16) {
	// nothing
}

// Recv implements [Vconn]. Listeners carry no messages.
func (p *ptcpVconn) Recv() (*buffer.Buffer, error) {
	return nil, unix.EOPNOTSUPP
}

// Send implements [Vconn]. Listeners carry no messages.
func (p *ptcpVconn) Send(msg *buffer.Buffer) error {
	return unix.EOPNOTSUPP
}

// Accept implements [Vconn]. The OS-level no-pending-connection result
// is returned verbatim as unix.EAGAIN.
func (p *ptcpVconn) Accept() (Vconn, error) {
	fd, _, err := unix.Accept(p.fd)
	if err != nil {
		return nil, err
	}
	return newTCPVconn(p.cfg, "tcp", fd)
}
