// Package capability defines what happens over an accepted
// connection.  A Capability operates on a Session rather than a raw
// net.Conn, which keeps it testable against scripted streams.
package capability

import (
	"context"

	"dredis/internal/session"
)

// Capability services one connection from handoff to termination.
type Capability interface {
	// Handle runs until the peer closes (nil) or an I/O error ends the
	// connection (non-nil).  It owns the session and closes it before
	// returning.
	Handle(ctx context.Context, sess *session.Session) error
}
