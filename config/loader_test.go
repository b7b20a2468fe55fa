package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DREDIS_HOST", "127.0.0.1")
	t.Setenv("DREDIS_PORT", "6380")
	t.Setenv("DREDIS_BUFFER_SIZE", "512")
	t.Setenv("DREDIS_STATS_ADDR", ":9121")
	t.Setenv("DREDIS_VERBOSE", "0")
	t.Setenv("DREDIS_TIMEOUT", "2")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != 6380 {
		t.Errorf("Port = %d, want 6380", cfg.Port)
	}
	if cfg.BufSize != 512 {
		t.Errorf("BufSize = %d, want 512", cfg.BufSize)
	}
	if cfg.StatsAddr != ":9121" {
		t.Errorf("StatsAddr = %q", cfg.StatsAddr)
	}
	if cfg.Verbose != 0 {
		t.Errorf("Verbose = %d, want 0 (explicit quiet)", cfg.Verbose)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Timeout)
	}
}

func TestLoadFromEnv_InvalidIgnored(t *testing.T) {
	t.Setenv("DREDIS_PORT", "not-a-number")
	t.Setenv("DREDIS_VERBOSE", "")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want default %d", cfg.Port, DefaultPort)
	}
	if cfg.Verbose != DefaultVerbosity {
		t.Errorf("Verbose = %d, want default %d", cfg.Verbose, DefaultVerbosity)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dredis.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[server]
host        = 127.0.0.1
port        = 7000
buffer_size = 1024

[stats]
addr = 127.0.0.1:9121

[log]
verbose = 3

[probe]
timeout = 1
`)
	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatal(err)
	}

	if cfg.Address() != "127.0.0.1:7000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.BufSize != 1024 {
		t.Errorf("BufSize = %d", cfg.BufSize)
	}
	if cfg.StatsAddr != "127.0.0.1:9121" {
		t.Errorf("StatsAddr = %q", cfg.StatsAddr)
	}
	if cfg.Verbose != 3 {
		t.Errorf("Verbose = %d", cfg.Verbose)
	}
	if cfg.Timeout != time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "[server]\nport = 7001\n")

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7001 {
		t.Errorf("Port = %d, want 7001", cfg.Port)
	}
	if cfg.Host != DefaultHost || cfg.BufSize != DefaultBufSize {
		t.Errorf("unset keys should keep defaults, got host=%q buf=%d", cfg.Host, cfg.BufSize)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if err := LoadFile(Default(), filepath.Join(t.TempDir(), "missing.ini")); err == nil {
		t.Error("missing file should fail")
	}

	path := writeFile(t, "[server]\nport = six\n")
	if err := LoadFile(Default(), path); err == nil {
		t.Error("non-numeric port should fail")
	}
}

func TestPrecedence_EnvOverFile(t *testing.T) {
	path := writeFile(t, "[server]\nport = 7002\n")
	t.Setenv("DREDIS_PORT", "7003")

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatal(err)
	}
	LoadFromEnv(cfg)
	if cfg.Port != 7003 {
		t.Errorf("Port = %d, env should beat file", cfg.Port)
	}
}
