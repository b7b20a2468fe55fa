// Package config defines the runtime configuration for dredis and the
// validation applied to it before any socket is opened.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	derr "dredis/internal/errors"
	"dredis/util"
)

// Config holds every tuneable for a single dredis process.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────
	Host    string
	Port    int
	BufSize int // per-connection read buffer capacity

	// ── Stats endpoint ───────────────────────────────────────────────
	StatsAddr string // host:port, empty disables

	// ── Probe client ─────────────────────────────────────────────────
	Probe    bool
	Payloads [][]byte
	Timeout  time.Duration // per-reply deadline

	// ── Process ──────────────────────────────────────────────────────
	ConfigFile string
	Verbose    int
	DryRun     bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:    DefaultHost,
		Port:    DefaultPort,
		BufSize: DefaultBufSize,
		Timeout: DefaultProbeTimeout,
		Verbose: DefaultVerbosity,
	}
}

// Address joins Host and Port.
func (c *Config) Address() string {
	return util.FormatAddr(c.Host, c.Port)
}

// ProbePayloads returns the configured payloads or the default PING.
func (c *Config) ProbePayloads() [][]byte {
	if len(c.Payloads) > 0 {
		return c.Payloads
	}
	return [][]byte{[]byte(DefaultPayload)}
}

// ── Parsers ──────────────────────────────────────────────────────────

// ParsePort parses a decimal TCP port in 1..65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ParsePayload interprets Go-style escapes (\r, \n, \t, \x00) so a
// payload like `PING\r\n` can be written on a command line.
func ParsePayload(s string) ([]byte, error) {
	if !strings.Contains(s, `\`) {
		return []byte(s), nil
	}
	quoted := `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	out, err := strconv.Unquote(quoted)
	if err != nil {
		return nil, fmt.Errorf("invalid escape in payload %q", s)
	}
	return []byte(out), nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &derr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    fmt.Sprintf("the default is %d", DefaultPort),
		}
	}

	if c.BufSize < 1 || c.BufSize > MaxBufSize {
		return &derr.ConfigError{
			Field:   "buffer-size",
			Value:   c.BufSize,
			Message: fmt.Sprintf("out of range 1-%d", MaxBufSize),
			Hint:    fmt.Sprintf("the default of %d fits any ordinary command", DefaultBufSize),
		}
	}

	if c.Probe {
		if c.Host == "" {
			return &derr.ConfigError{
				Field:   "host",
				Message: "required with --probe",
				Hint:    "usage: dredis --probe <host> <port>",
			}
		}
		if c.Timeout < 0 {
			return &derr.ConfigError{
				Field:   "timeout",
				Value:   c.Timeout,
				Message: "must not be negative",
			}
		}
		for i, p := range c.Payloads {
			if len(p) == 0 {
				return &derr.ConfigError{
					Field:   "message",
					Value:   i + 1,
					Message: "payload is empty",
					Hint:    "an empty write is indistinguishable from no write; the server only acknowledges non-empty reads",
				}
			}
		}
	}

	if c.StatsAddr != "" {
		if _, _, err := util.SplitAddr(c.StatsAddr); err != nil {
			return &derr.ConfigError{
				Field:   "stats-addr",
				Value:   c.StatsAddr,
				Message: "must be host:port",
				Hint:    "for example 127.0.0.1:9121 or :9121",
			}
		}
	}

	return nil
}
