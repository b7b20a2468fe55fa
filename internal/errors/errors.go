// Package errors provides domain-specific error types for dredis.
//
// A connection's read outcome is split three ways (data, would-block,
// close) and everything else is a real failure.  The types here keep
// that split explicit: ErrWouldBlock is a control-flow signal, while
// NetworkError carries the operation that failed so the listener can
// tell a dead socket from a transient accept hiccup.
package errors

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrWouldBlock reports that a non-blocking read found nothing to
	// consume.  It is not a failure: retry after the next readiness wait.
	ErrWouldBlock = errors.New("operation would block")

	// ErrUnexpectedReply reports that a probed server answered with
	// something other than the acknowledgment.
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// ── Operations ───────────────────────────────────────────────────────

// Network operations recorded in NetworkError.Op.
const (
	OpListen = "listen" // bind failure, fatal at startup
	OpAccept = "accept"
	OpWait   = "wait" // readiness suspension
	OpRead   = "read"
	OpWrite  = "write"
	OpDial   = "dial"
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // one of the Op* constants
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// Bind wraps a listen failure.  Bind errors are never retryable: the
// process cannot serve without its listener.
func Bind(addr string, err error) *NetworkError {
	return &NetworkError{Op: OpListen, Addr: addr, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsWouldBlock reports whether err is the would-block signal, either
// ErrWouldBlock itself or a raw EAGAIN/EWOULDBLOCK errno.
func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrWouldBlock) {
		return true
	}
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}

// IsBindError reports whether err came from binding a listener.
func IsBindError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Op == OpListen
}

// IsListenerFatal reports whether an accept error means the listening
// socket itself is gone.  Anything else (descriptor exhaustion, a peer
// that reset before accept completed) is transient.
func IsListenerFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EBADF) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTSOCK)
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}
