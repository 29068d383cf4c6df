//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package vconn

import (
	"errors"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/d548/openflow/buffer"
	"golang.org/x/sys/unix"
)

// rxBufSize is the initial capacity of the receive staging buffer,
// large enough for typical messages without growing.
const rxBufSize = 1564

// tcpVconn is an active TCP connection.
type tcpVconn struct {
	cfg *Config
	fd  int

	// rxbuf stages the bytes of the message being reassembled, or is
	// nil before the first read of a message.
	rxbuf *buffer.Buffer

	// txbuf holds the unsent remainder of a partially written message,
	// or is nil when no write is pending.
	txbuf *buffer.Buffer
}

var _ Vconn = &tcpVconn{}

// newTCPVconn wraps fd as an active connection: non-blocking, with send
// coalescing disabled so that small control messages leave immediately.
// Closes fd on failure.
func newTCPVconn(cfg *Config, name string, fd int) (Vconn, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		cfg.Logger.Debug("vconnOpen: set nonblocking", "name", name,
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		unix.Close(fd)
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		cfg.Logger.Debug("vconnOpen: setsockopt(TCP_NODELAY)", "name", name,
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		unix.Close(fd)
		return nil, err
	}
	cfg.Logger.Info("vconnOpen", "name", name)
	return &tcpVconn{cfg: cfg, fd: fd}, nil
}

// tcpOpen connects to "host[:port]" and wraps the stream.
func tcpOpen(cfg *Config, name, suffix string) (Vconn, error) {
	sa, err := parseInet4(suffix, DefaultPort)
	if err != nil {
		cfg.Logger.Debug("vconnOpen: bad peer name", "name", name,
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		cfg.Logger.Debug("vconnOpen: socket", "name", name,
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		return nil, err
	}
	t0 := cfg.TimeNow()
	if err := unix.Connect(fd, sa); err != nil {
		cfg.Logger.Debug("vconnOpen: connect", "name", name,
			"err", err, "errClass", cfg.ErrClassifier.Classify(err))
		unix.Close(fd)
		return nil, err
	}
	cfg.Logger.Debug("vconnOpen: connected", "name", name, "elapsed", cfg.TimeNow().Sub(t0))

	return newTCPVconn(cfg, name, fd)
}

// parseInet4 parses "host[:port]" into an IPv4 socket address.
func parseInet4(suffix string, defaultPort int) (*unix.SockaddrInet4, error) {
	host, portString, hasPort := strings.Cut(suffix, ":")
	if host == "" {
		return nil, unix.EINVAL
	}
	port := defaultPort
	if hasPort {
		var err error
		if port, err = strconv.Atoi(portString); err != nil || port <= 0 || port > 65535 {
			return nil, unix.EINVAL
		}
	}

	addr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return nil, unix.ENOENT
	}
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return nil, unix.ENOENT
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip4)
	return sa, nil
}

// Close implements [Vconn].
func (c *tcpVconn) Close() error {
	c.cfg.Logger.Info("vconnClose")
	return unix.Close(c.fd)
}

// PrePoll implements [Vconn]. Write readiness is requested not only on
// WantSend but also whenever a partial send is pending, so that
// [tcpVconn.PostPoll] gets a chance to drain it.
func (c *tcpVconn) PrePoll(want Want, pfd *unix.PollFd) bool {
	pfd.Fd = int32(c.fd)
	if want&WantRecv != 0 {
		pfd.Events |= unix.POLLIN
	}
	if want&WantSend != 0 || c.txbuf != nil {
		pfd.Events |= unix.POLLOUT
	}
	return false
}

// PostPoll implements [Vconn]. When the descriptor is write-ready and a
// partial send is pending, it flushes as much as possible. POLLOUT is
// cleared unless the pending write fully drained, and POLLERR is set on
// a hard write error.
func (c *tcpVconn) PostPoll(revents *int16) {
	if *revents&unix.POLLOUT != 0 && c.txbuf != nil {
		n, err := unix.Write(c.fd, c.txbuf.Bytes())
		if err != nil {
			if !errors.Is(err, unix.EAGAIN) {
				c.cfg.Logger.Debug("vconnPostPoll: write",
					"err", err, "errClass", c.cfg.ErrClassifier.Classify(err))
				*revents |= unix.POLLERR
			}
		} else if n > 0 {
			c.txbuf.Pull(n)
			if c.txbuf.Size() == 0 {
				c.txbuf = nil
			}
		}
		if c.txbuf != nil {
			*revents &^= unix.POLLOUT
		}
	}
}

// Recv implements [Vconn]. It reassembles one length-prefixed message:
// first it buffers the fixed header, then reads the total length the
// header declares, then keeps reading until that many bytes are
// buffered. A read round that comes up short returns unix.EAGAIN so the
// poll loop stays in control; the partially reassembled message stays
// staged for the next call.
func (c *tcpVconn) Recv() (*buffer.Buffer, error) {
	if c.rxbuf == nil {
		c.rxbuf = buffer.New(rxBufSize)
	}
	rx := c.rxbuf

	for {
		var wantBytes int
		if rx.Size() < HeaderLen {
			wantBytes = HeaderLen - rx.Size()
		} else {
			length := MsgLength(rx)
			if length < HeaderLen {
				c.cfg.Logger.Debug("vconnRecv: declared length shorter than header",
					"length", length)
				return nil, unix.EPROTO
			}
			if rx.Size() == length {
				c.rxbuf = nil
				return rx, nil
			}
			wantBytes = length - rx.Size()
		}

		base := rx.Size()
		region := rx.PutUninit(wantBytes)
		n, err := unix.Read(c.fd, region)
		switch {
		case n > 0:
			rx.Truncate(base + n)
			if n < wantBytes {
				return nil, unix.EAGAIN
			}
		case n == 0 && err == nil:
			rx.Truncate(base)
			if base != 0 {
				// The peer closed the stream mid-message.
				c.cfg.Logger.Debug("vconnRecv: connection dropped mid-message",
					"buffered", base)
				return nil, unix.EPROTO
			}
			return nil, io.EOF
		default:
			rx.Truncate(base)
			if err == nil {
				err = unix.EAGAIN
			}
			return nil, err
		}
	}
}

// Send implements [Vconn]. It attempts the write immediately: a full
// write completes the send, while a partial write or EAGAIN stages the
// remainder in txbuf for [tcpVconn.PostPoll] to drain. At most one
// write may be pending; further sends return unix.EAGAIN until it
// drains.
func (c *tcpVconn) Send(msg *buffer.Buffer) error {
	if c.txbuf != nil {
		return unix.EAGAIN
	}

	n, err := unix.Write(c.fd, msg.Bytes())
	switch {
	case n == msg.Size():
		return nil
	case n >= 0 || errors.Is(err, unix.EAGAIN):
		c.txbuf = msg
		if n > 0 {
			msg.Pull(n)
		}
		return nil
	default:
		c.cfg.Logger.Debug("vconnSend: write",
			"err", err, "errClass", c.cfg.ErrClassifier.Classify(err))
		return err
	}
}

// Accept implements [Vconn]. Active connections cannot accept.
func (c *tcpVconn) Accept() (Vconn, error) {
	return nil, unix.EOPNOTSUPP
}
