// Package metrics provides lightweight, lock-free counters and gauges
// for tracking runtime statistics of a dredis server.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a dredis process.
// A nil Collector is safe to use: all methods become no-ops.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	acksSent          atomic.Int64
	wouldBlocks       atomic.Int64
	peerCloses        atomic.Int64
	acceptRetries     atomic.Int64
	errorsTotal       atomic.Int64

	mu              sync.RWMutex
	startTime       time.Time
	lastHealthCheck time.Time
	lastError       time.Time
	lastErrorMsg    string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// PeerClosed records a connection ended by the peer's EOF.
func (c *Collector) PeerClosed() {
	if c == nil {
		return
	}
	c.peerCloses.Add(1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// PeerCloses returns how many connections the peer closed cleanly.
func (c *Collector) PeerCloses() int64 {
	if c == nil {
		return 0
	}
	return c.peerCloses.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from the network.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to the network.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// AckSent records one acknowledgment written in full.
func (c *Collector) AckSent() {
	if c == nil {
		return
	}
	c.acksSent.Add(1)
}

// WouldBlock records a read attempt that found no data.
func (c *Collector) WouldBlock() {
	if c == nil {
		return
	}
	c.wouldBlocks.Add(1)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// Acks returns the number of acknowledgments sent.
func (c *Collector) Acks() int64 {
	if c == nil {
		return 0
	}
	return c.acksSent.Load()
}

// WouldBlocks returns the number of empty non-blocking read attempts.
func (c *Collector) WouldBlocks() int64 {
	if c == nil {
		return 0
	}
	return c.wouldBlocks.Load()
}

// ── Listener metrics ─────────────────────────────────────────────────

// AcceptRetry records a transient accept failure.
func (c *Collector) AcceptRetry() {
	if c == nil {
		return
	}
	c.acceptRetries.Add(1)
}

// AcceptRetries returns the number of transient accept failures.
func (c *Collector) AcceptRetries() int64 {
	if c == nil {
		return 0
	}
	return c.acceptRetries.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Health ───────────────────────────────────────────────────────────

// RecordHealthCheck updates the last health check timestamp.
func (c *Collector) RecordHealthCheck() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lastHealthCheck = time.Now()
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	PeerCloses        int64  `json:"peer_closes"`
	BytesIn           int64  `json:"bytes_in"`
	BytesOut          int64  `json:"bytes_out"`
	AcksSent          int64  `json:"acks_sent"`
	WouldBlocks       int64  `json:"would_blocks"`
	AcceptRetries     int64  `json:"accept_retries"`
	ErrorsTotal       int64  `json:"errors_total"`
	LastHealthCheck   string `json:"last_health_check,omitempty"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		PeerCloses:        c.peerCloses.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		AcksSent:          c.acksSent.Load(),
		WouldBlocks:       c.wouldBlocks.Load(),
		AcceptRetries:     c.acceptRetries.Load(),
		ErrorsTotal:       c.errorsTotal.Load(),
	}
	if !c.lastHealthCheck.IsZero() {
		s.LastHealthCheck = c.lastHealthCheck.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
