package config

// loader.go - configuration loading from an ini file and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables
//   3. Config file (--config)
//   4. Defaults   (defaults.go)

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

// ── Config file ──────────────────────────────────────────────────────
//
//	[server]
//	host        = 127.0.0.1
//	port        = 6380
//	buffer_size = 8192
//
//	[stats]
//	addr = 127.0.0.1:9121
//
//	[log]
//	verbose = 2
//
//	[probe]
//	timeout = 3   ; seconds
//
// Only keys present in the file override cfg.

// LoadFile overlays the ini file at path onto cfg.
func LoadFile(cfg *Config, path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	server := f.Section("server")
	if server.HasKey("host") {
		cfg.Host = server.Key("host").String()
	}
	if err := iniInt(server, "port", &cfg.Port); err != nil {
		return err
	}
	if err := iniInt(server, "buffer_size", &cfg.BufSize); err != nil {
		return err
	}

	if stats := f.Section("stats"); stats.HasKey("addr") {
		cfg.StatsAddr = stats.Key("addr").String()
	}

	if err := iniInt(f.Section("log"), "verbose", &cfg.Verbose); err != nil {
		return err
	}

	var timeout int
	probe := f.Section("probe")
	if probe.HasKey("timeout") {
		if err := iniInt(probe, "timeout", &timeout); err != nil {
			return err
		}
		cfg.Timeout = secondsDuration(timeout)
	}

	return nil
}

func iniInt(sec *ini.Section, key string, dst *int) error {
	if !sec.HasKey(key) {
		return nil
	}
	v, err := sec.Key(key).Int()
	if err != nil {
		return fmt.Errorf("config [%s] %s: %w", sec.Name(), key, err)
	}
	*dst = v
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the DREDIS_ prefix.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flags are applied so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("DREDIS_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("DREDIS_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := envInt("DREDIS_BUFFER_SIZE"); v > 0 {
		cfg.BufSize = v
	}
	if v := os.Getenv("DREDIS_STATS_ADDR"); v != "" {
		cfg.StatsAddr = v
	}
	if v, ok := os.LookupEnv("DREDIS_VERBOSE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Verbose = n
		}
	}
	if v := envInt("DREDIS_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
