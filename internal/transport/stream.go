package transport

import (
	"errors"
	"io"
	"net"

	derr "dredis/internal/errors"
)

// Stream is an accepted connection seen through a readiness/attempt
// split.  A Stream is owned by exactly one goroutine.
type Stream interface {
	// WaitReadable parks until a read attempt is worth making: data is
	// buffered, the peer has closed, or the socket has an error pending.
	// Nothing is consumed.
	WaitReadable() error

	// TryRead makes a single read attempt.  It returns (n > 0, nil) for
	// data, (0, nil) when the peer has closed its write side, and an
	// error wrapping derr.ErrWouldBlock when nothing is available yet.
	TryRead(p []byte) (int, error)

	Write(p []byte) (int, error)
	RemoteAddr() net.Addr
	Close() error
}

// NewStream wraps conn.  Sockets that expose a raw descriptor get true
// non-blocking reads where the platform supports it; everything else
// (pipes, TLS, non-unix systems) falls back to a blocking stream.
func NewStream(conn net.Conn) Stream {
	if s, ok := newRawStream(conn); ok {
		return s
	}
	return &blockingStream{conn: conn}
}

// ── blocking fallback ────────────────────────────────────────────────

// blockingStream has no separate readiness step: the read attempt
// itself parks.  It never reports would-block except for the (0, nil)
// reads io.Reader permits.
type blockingStream struct {
	conn net.Conn
}

func (s *blockingStream) WaitReadable() error { return nil }

func (s *blockingStream) TryRead(p []byte) (int, error) {
	n, err := s.conn.Read(p)
	switch {
	case n > 0:
		return n, nil
	case err == nil:
		return 0, derr.ErrWouldBlock
	case errors.Is(err, io.EOF):
		return 0, nil
	default:
		return 0, err
	}
}

func (s *blockingStream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *blockingStream) RemoteAddr() net.Addr        { return s.conn.RemoteAddr() }
func (s *blockingStream) Close() error                { return s.conn.Close() }
