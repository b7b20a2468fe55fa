package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"dredis/internal/capability"
	derr "dredis/internal/errors"
	"dredis/internal/metrics"
	"dredis/internal/retry"
	"dredis/internal/transport"
	"dredis/util"
)

// ProbeMode is the client side of the acknowledgment contract: it
// sends each payload, expects exactly one Reply per payload, then
// half-closes and waits for the server to close.
type ProbeMode struct {
	Dialer   transport.Dialer
	Address  string
	Payloads [][]byte
	Timeout  time.Duration // per-reply read deadline
	Logger   *util.Logger
	Metrics  *metrics.Collector

	// Backoff paces dial retries.  Nil means retry.DialBackoff().
	Backoff *retry.Backoff

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

func (m *ProbeMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run dials, exchanges every payload and tears the connection down.
func (m *ProbeMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("probe %s: %w", m.Address, err)
	}
	defer conn.Close()

	m.Metrics.ConnectionOpened()
	defer m.Metrics.ConnectionClosed()
	m.Logger.Verbose("connected to %s", conn.RemoteAddr())

	reply := make([]byte, len(capability.Reply))
	for _, p := range m.Payloads {
		if err := transport.WriteFull(conn, p); err != nil {
			return derr.Wrap(derr.OpWrite, m.Address, err)
		}
		m.Metrics.BytesSent(int64(len(p)))

		if m.Timeout > 0 {
			conn.SetReadDeadline(time.Now().Add(m.Timeout)) //nolint:errcheck
		}
		if _, err := io.ReadFull(conn, reply); err != nil {
			return derr.Wrap(derr.OpRead, m.Address, err)
		}
		m.Metrics.BytesReceived(int64(len(reply)))

		if !bytes.Equal(reply, capability.Reply) {
			return fmt.Errorf("%w: got %q, want %q", derr.ErrUnexpectedReply, reply, capability.Reply)
		}
		m.Metrics.AckSent()
		fmt.Fprintf(m.stdout(), "%s -> %s\n", quote(p), quote(reply))
	}

	return m.drain(conn)
}

func (m *ProbeMode) dial(ctx context.Context) (net.Conn, error) {
	backoff := m.Backoff
	if backoff == nil {
		backoff = retry.DialBackoff()
	}

	var conn net.Conn
	err := backoff.Do(ctx, func(attempt int) error {
		c, err := m.Dialer.Dial(ctx, "tcp", m.Address)
		if err != nil {
			werr := derr.Wrap(derr.OpDial, m.Address, err)
			if !derr.IsRetryable(werr) {
				return retry.Permanent(werr)
			}
			m.Logger.Verbose("dial attempt %d failed: %v", attempt, err)
			return werr
		}
		conn = c
		return nil
	})
	return conn, err
}

// drain half-closes the write side and waits for the server's EOF.
// Any bytes arriving after the last reply are unexpected.
func (m *ProbeMode) drain(conn net.Conn) error {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err != nil {
			return derr.Wrap(derr.OpWrite, m.Address, err)
		}
	} else {
		return nil
	}

	if m.Timeout > 0 {
		conn.SetReadDeadline(time.Now().Add(m.Timeout)) //nolint:errcheck
	}
	extra, err := io.ReadAll(conn)
	if err != nil {
		return derr.Wrap(derr.OpRead, m.Address, err)
	}
	if len(extra) > 0 {
		return fmt.Errorf("%w: %d trailing bytes after close", derr.ErrUnexpectedReply, len(extra))
	}
	m.Logger.Verbose("server closed %s", m.Address)
	return nil
}

// quote renders a payload with its control characters escaped.
func quote(b []byte) string {
	s := strconv.Quote(util.Decode(b))
	return s[1 : len(s)-1]
}
