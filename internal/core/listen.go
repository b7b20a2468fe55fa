package core

import (
	"context"
	"fmt"
	"net"

	"dredis/internal/capability"
	derr "dredis/internal/errors"
	"dredis/internal/metrics"
	"dredis/internal/retry"
	"dredis/internal/session"
	"dredis/util"
)

// ListenMode binds a TCP listener and runs a capability on every
// accepted connection, each in its own goroutine.  There is no
// admission limit and no per-connection timeout.
type ListenMode struct {
	Address    string // host:port
	Capability capability.Capability
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// Backoff paces retries after transient accept failures.
	// Nil means retry.AcceptBackoff().
	Backoff *retry.Backoff

	// OnReady, if set, is called with the bound address before the
	// first accept.
	OnReady func(net.Addr)
}

// Bind opens the listening socket.  Failure is a bind error and is
// never retried.
func Bind(address string) (net.Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, derr.Bind(address, err)
	}
	return ln, nil
}

// Run binds, then serves until ctx is cancelled or the listener dies.
// Cancellation closes the listener and Run returns nil; connections
// already handed off keep running.
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := Bind(m.Address)
	if err != nil {
		return err
	}
	m.Logger.Info("listening on %s", ln.Addr())
	if m.OnReady != nil {
		m.OnReady(ln.Addr())
	}
	return m.Serve(ctx, ln)
}

// Serve accepts connections on ln forever.  It owns ln and closes it
// on return.
func (m *ListenMode) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	// Shut the listener down when the context expires.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	backoff := m.Backoff
	if backoff == nil {
		backoff = retry.AcceptBackoff()
	}
	addr := ln.Addr().String()

	for {
		var conn net.Conn
		err := backoff.Do(ctx, func(attempt int) error {
			c, err := ln.Accept()
			if err == nil {
				conn = c
				return nil
			}
			if ctx.Err() != nil || derr.IsListenerFatal(err) {
				return retry.Permanent(err)
			}
			m.Metrics.AcceptRetry()
			m.Logger.Warn("accept failed (attempt %d): %v", attempt, err)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				m.Logger.Verbose("listener on %s closed", addr)
				return nil
			}
			m.Metrics.RecordError(err.Error())
			return fmt.Errorf("serve: %w", derr.Wrap(derr.OpAccept, addr, err))
		}

		m.Logger.Info("accepted connection from %s", conn.RemoteAddr())
		go m.serveConn(ctx, conn)
	}
}

// serveConn runs the capability on one connection.  Its error ends
// here: it is logged and counted, never propagated to the listener.
func (m *ListenMode) serveConn(ctx context.Context, conn net.Conn) {
	m.Metrics.ConnectionOpened()
	defer m.Metrics.ConnectionClosed()

	sess := session.New(conn, m.Logger, m.Metrics)
	if err := m.Capability.Handle(ctx, sess); err != nil {
		m.Metrics.RecordError(err.Error())
		sess.Logger.Warn("connection error: %v", err)
	}
}
