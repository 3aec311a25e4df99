// Package transport provides the byte-pipe abstraction the session layer
// frames messages over: connect a UNIX socket, write all given bytes, read
// exactly N bytes. It does not know about frames, contexts or replies;
// that belongs to the session package.
package transport

import (
	"io"
	"net"
	"time"
)

// Transport is the single interface the rest of the client depends on. A
// real connection and a test double (net.Pipe, a unix socketpair) both
// satisfy it.
type Transport interface {
	io.Closer

	// WriteAll writes the entirety of b, blocking until done, an error
	// occurs, or deadline (zero means no deadline) elapses.
	WriteAll(b []byte, deadline time.Time) error

	// ReadFull reads exactly len(b) bytes into b, blocking until done, an
	// error occurs (including io.ErrUnexpectedEOF on a short read), or
	// deadline elapses.
	ReadFull(b []byte, deadline time.Time) error
}

// unixTransport wraps a net.Conn established over a UNIX domain socket.
type unixTransport struct {
	conn net.Conn
}

// Dial connects to path over a UNIX socket. network is typically "unix"
// (stream) or "unixpacket" (seqpacket).
func Dial(network, path string) (Transport, error) {
	conn, err := net.Dial(network, path)
	if err != nil {
		return nil, err
	}
	return &unixTransport{conn: conn}, nil
}

// New wraps an already-established net.Conn (e.g. one returned by
// net.DialUnix, or one half of a test socketpair) as a Transport.
func New(conn net.Conn) Transport {
	return &unixTransport{conn: conn}
}

func (t *unixTransport) Close() error { return t.conn.Close() }

func (t *unixTransport) WriteAll(b []byte, deadline time.Time) error {
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	for len(b) > 0 {
		n, err := t.conn.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func (t *unixTransport) ReadFull(b []byte, deadline time.Time) error {
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	_, err := io.ReadFull(t.conn, b)
	return err
}
