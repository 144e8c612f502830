// Package transport provides the three byte-stream transports a Conn can be
// built on: plain TCP, TLS-over-TCP, and Unix domain sockets, behind a
// single Stream interface so the rest of the driver never branches on
// which one is in use.
package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// Stream is a full-duplex byte stream, satisfied by net.TCPConn, tls.Conn,
// and net.UnixConn alike.
type Stream interface {
	net.Conn
	// The interface itself carries no half-close methods. Unix and TCP conns
	// also implement CloseWrite and CloseRead; tls.Conn only implements
	// CloseWrite, so Shutdown below falls back to a full Close for TLS
	// streams.
}

// Shutdown performs the bidirectional close §4.2 and §5 require: the
// connection is unusable afterward regardless of which concrete transport
// backs it.
func Shutdown(s Stream) error {
	type halfCloser interface {
		CloseWrite() error
		CloseRead() error
	}
	if hc, ok := s.(halfCloser); ok {
		// Read half first: once the write half is shut and the peer has
		// already closed, the socket can reach the fully closed state and a
		// later CloseRead would fail with ENOTCONN.
		rerr := hc.CloseRead()
		werr := hc.CloseWrite()
		if werr != nil {
			return fmt.Errorf("transport: shutdown write half: %w", werr)
		}
		if rerr != nil {
			return fmt.Errorf("transport: shutdown read half: %w", rerr)
		}
		return nil
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("transport: close: %w", err)
	}
	return nil
}

// DialTCP opens a plain TCP connection to host:port.
func DialTCP(host string, port int) (Stream, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("transport: dial tcp %s: %w", addr, err)
	}
	return conn.(*net.TCPConn), nil
}

// DialTLS opens a TCP connection to host:port and performs a TLS handshake
// over it. Per the driver's design notes, hostname and certificate
// verification are disabled by default to match the reference driver's
// observable behavior (native_tls's danger_accept_invalid_hostnames /
// danger_accept_invalid_certs); override is non-nil to opt into stricter
// verification.
func DialTLS(host string, port int, override *tls.Config) (Stream, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	cfg := &tls.Config{InsecureSkipVerify: true} //nolint:gosec // matches reference driver default; see design notes
	if override != nil {
		cfg = override
	}

	raw, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("transport: dial tcp %s: %w", addr, err)
	}
	conn := tls.Client(raw, cfg)
	if err := conn.Handshake(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("transport: tls handshake with %s: %w", addr, err)
	}
	return conn, nil
}

// DialUnix opens a connection to a Unix domain socket at path.
func DialUnix(path string) (Stream, error) {
	conn, err := net.DialTimeout("unix", path, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("transport: dial unix %s: %w", path, err)
	}
	return conn.(*net.UnixConn), nil
}
