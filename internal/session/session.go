// Package session represents a single accepted connection from handoff
// to release.  A Session is created by the listener and from then on
// belongs to exactly one handler goroutine; the listener keeps no
// reference to it.
package session

import (
	"net"

	"dredis/internal/metrics"
	"dredis/internal/transport"
	"dredis/util"
)

// Session encapsulates the runtime context for a single connection.
type Session struct {
	Stream  transport.Stream
	Remote  string
	Logger  *util.Logger // carries remote=<addr> on every line
	Metrics *metrics.Collector
}

// New wraps an accepted connection.  The logger is scoped to the
// connection's remote address.
func New(conn net.Conn, logger *util.Logger, m *metrics.Collector) *Session {
	return FromStream(transport.NewStream(conn), logger, m)
}

// FromStream builds a Session around an existing stream.
func FromStream(s transport.Stream, logger *util.Logger, m *metrics.Collector) *Session {
	remote := "unknown"
	if addr := s.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &Session{
		Stream:  s,
		Remote:  remote,
		Logger:  logger.With("remote", remote),
		Metrics: m,
	}
}

// Close releases the stream.
func (s *Session) Close() error {
	return s.Stream.Close()
}
