package core

import (
	"dredis/config"
	"dredis/internal/capability"
	"dredis/internal/metrics"
	"dredis/internal/transport"
	"dredis/util"
)

// Build constructs the appropriate Mode from the given configuration.
// cfg is expected to have passed Validate.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	if cfg.Probe {
		return buildProbe(cfg, logger, m), nil
	}
	return buildListen(cfg, logger, m), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildListen(cfg *config.Config, logger *util.Logger, m *metrics.Collector) *ListenMode {
	return &ListenMode{
		Address:    cfg.Address(),
		Capability: &capability.Ack{BufSize: cfg.BufSize},
		Logger:     logger,
		Metrics:    m,
	}
}

func buildProbe(cfg *config.Config, logger *util.Logger, m *metrics.Collector) *ProbeMode {
	return &ProbeMode{
		Dialer:   &transport.TCPDialer{Timeout: cfg.Timeout},
		Address:  cfg.Address(),
		Payloads: cfg.ProbePayloads(),
		Timeout:  cfg.Timeout,
		Logger:   logger,
		Metrics:  m,
	}
}
