// Package transport provides the byte-stream primitives the server and
// the probe client are built on.  Inbound connections are wrapped in a
// Stream, which separates waiting for readability from the read attempt
// itself so that the caller sees "nothing yet" as its own outcome.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer.
	// Stateless dialers return nil.
	Close() error
}
