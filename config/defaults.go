package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost binds every interface.
	DefaultHost = "0.0.0.0"

	// DefaultPort is the conventional Redis port, so stock clients
	// connect without flags.
	DefaultPort = 6379

	// DefaultBufSize is the per-connection read buffer.  Reads larger
	// than this arrive as several reads and get several replies.
	DefaultBufSize = 4096

	// MaxBufSize caps --buffer-size.
	MaxBufSize = 64 * 1024

	// DefaultVerbosity logs every accept, read and close.
	DefaultVerbosity = 1

	// DefaultProbeTimeout bounds each reply wait in probe mode.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultPayload is what probe mode sends when no -m is given.
	DefaultPayload = "PING\r\n"
)
