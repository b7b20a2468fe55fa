package core

import (
	"testing"

	"dredis/config"
	"dredis/internal/capability"
	"dredis/util"
)

// TestBuild_Listen verifies the default configuration serves.
func TestBuild_Listen(t *testing.T) {
	cfg := config.Default()
	cfg.BufSize = 512

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	lm, ok := mode.(*ListenMode)
	if !ok {
		t.Fatalf("expected *ListenMode, got %T", mode)
	}
	if lm.Address != "0.0.0.0:6379" {
		t.Errorf("Address = %q", lm.Address)
	}
	ack, ok := lm.Capability.(*capability.Ack)
	if !ok {
		t.Fatalf("expected *capability.Ack, got %T", lm.Capability)
	}
	if ack.BufSize != 512 {
		t.Errorf("BufSize = %d, want 512", ack.BufSize)
	}
}

// TestBuild_Probe verifies --probe produces a ProbeMode with the
// default payload.
func TestBuild_Probe(t *testing.T) {
	cfg := config.Default()
	cfg.Probe = true
	cfg.Host = "127.0.0.1"
	cfg.Port = 7000

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	pm, ok := mode.(*ProbeMode)
	if !ok {
		t.Fatalf("expected *ProbeMode, got %T", mode)
	}
	if pm.Address != "127.0.0.1:7000" {
		t.Errorf("Address = %q", pm.Address)
	}
	if len(pm.Payloads) != 1 || string(pm.Payloads[0]) != config.DefaultPayload {
		t.Errorf("Payloads = %q", pm.Payloads)
	}
	if pm.Timeout != config.DefaultProbeTimeout {
		t.Errorf("Timeout = %v", pm.Timeout)
	}
}
