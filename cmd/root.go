// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"dredis/config"
	"dredis/internal/api"
	"dredis/internal/core"
	"dredis/internal/metrics"
	"dredis/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X dredis/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// stdout receives --version, --dry-run and probe output.  Tests
// redirect it.
var stdout io.Writer = os.Stdout //nolint:gochecknoglobals

// flagValues holds raw flag values before they are layered over the
// file and environment configuration.
type flagValues struct {
	host       string
	port       int
	bufSize    int
	statsAddr  string
	configFile string
	verbose    int
	quiet      bool
	probe      bool
	messages   []string
	timeoutSec int
	dryRun     bool
}

// Execute parses args and runs the appropriate dredis mode.
func Execute(ctx context.Context, args []string) error {
	var fv flagValues
	fs := flag.NewFlagSet("dredis", flag.ContinueOnError)

	// ── server ───────────────────────────────────────────────────
	fs.StringVar(&fv.host, "host", config.DefaultHost, "Bind address (probe: target host)")
	fs.IntVarP(&fv.port, "port", "p", config.DefaultPort, "TCP port")
	fs.IntVarP(&fv.bufSize, "buffer-size", "b", config.DefaultBufSize, "Per-connection read buffer in bytes")
	fs.StringVar(&fv.statsAddr, "stats-addr", "", "Serve /health, /ready and /stats on host:port")

	// ── probe ────────────────────────────────────────────────────
	fs.BoolVarP(&fv.probe, "probe", "P", false, "Probe a running server instead of serving")
	fs.StringArrayVarP(&fv.messages, "message", "m", nil, `Probe payload, escapes allowed (repeatable, default "PING\r\n")`)
	fs.IntVarP(&fv.timeoutSec, "timeout", "w", int(config.DefaultProbeTimeout/time.Second), "Probe reply timeout in seconds")

	// ── process ──────────────────────────────────────────────────
	fs.StringVarP(&fv.configFile, "config", "C", "", "Read settings from an ini file")
	fs.CountVarP(&fv.verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&fv.quiet, "quiet", "q", false, "Log errors only")
	fs.BoolVar(&fv.dryRun, "dry-run", false, "Validate configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "dredis %s\n", version)
		return nil
	}

	// ── layer configuration ──────────────────────────────────────
	cfg, err := loadConfig(fs, &fv)
	if err != nil {
		return err
	}
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DryRun {
		printSummary(cfg)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	m := metrics.New()

	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}

	switch md := mode.(type) {
	case *core.ListenMode:
		if cfg.StatsAddr != "" {
			stats := api.NewStatsServer(cfg.StatsAddr, m, logger)
			if _, err := stats.Start(); err != nil {
				return fmt.Errorf("stats server: %w", err)
			}
			defer stopStats(stats, logger)
			md.OnReady = func(net.Addr) { stats.SetReady(true) }
		}
	case *core.ProbeMode:
		md.Stdout = stdout
	}

	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// loadConfig applies defaults, then the config file, then the
// environment, then only those flags the user actually set.
func loadConfig(fs *flag.FlagSet, fv *flagValues) (*config.Config, error) {
	cfg := config.Default()
	if fv.probe {
		// The bind default is no target: probe needs a host that was
		// set on purpose.
		cfg.Host = ""
	}

	if fv.configFile != "" {
		cfg.ConfigFile = fv.configFile
		if err := config.LoadFile(cfg, fv.configFile); err != nil {
			return nil, err
		}
	}
	config.LoadFromEnv(cfg)

	if fs.Changed("host") {
		cfg.Host = fv.host
	}
	if fs.Changed("port") {
		cfg.Port = fv.port
	}
	if fs.Changed("buffer-size") {
		cfg.BufSize = fv.bufSize
	}
	if fs.Changed("stats-addr") {
		cfg.StatsAddr = fv.statsAddr
	}
	if fs.Changed("timeout") {
		cfg.Timeout = time.Duration(fv.timeoutSec) * time.Second
	}
	if fs.Changed("verbose") {
		cfg.Verbose = config.DefaultVerbosity + fv.verbose
	}
	if fv.quiet {
		cfg.Verbose = 0
	}

	cfg.Probe = fv.probe
	cfg.DryRun = fv.dryRun
	for _, msg := range fv.messages {
		p, err := config.ParsePayload(msg)
		if err != nil {
			return nil, fmt.Errorf("message: %w", err)
		}
		cfg.Payloads = append(cfg.Payloads, p)
	}
	return cfg, nil
}

// parsePositional accepts [host] [port] in either mode.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
	case 1:
		cfg.Host = remaining[0]
	case 2:
		cfg.Host = remaining[0]
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
	return nil
}

func stopStats(s *api.StatsServer, logger *util.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.Warn("stats server shutdown: %v", err)
	}
}

func printSummary(cfg *config.Config) {
	if cfg.Probe {
		fmt.Fprintf(stdout, "config ok: probe %s with %d payload(s), timeout %s\n",
			cfg.Address(), len(cfg.ProbePayloads()), cfg.Timeout)
		return
	}
	fmt.Fprintf(stdout, "config ok: serve on %s, buffer %d bytes", cfg.Address(), cfg.BufSize)
	if cfg.StatsAddr != "" {
		fmt.Fprintf(stdout, ", stats on %s", cfg.StatsAddr)
	}
	fmt.Fprintln(stdout)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `dredis – acknowledging wire-protocol stub v%s

Accepts TCP connections and answers every non-empty read with +OK\r\n.
Nothing is parsed and nothing is stored.

Usage:
  dredis [options] [host] [port]              Serve (default 0.0.0.0 6379)
  dredis --probe [options] <host> <port>      Probe a running server

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  DREDIS_HOST DREDIS_PORT DREDIS_BUFFER_SIZE DREDIS_STATS_ADDR
  DREDIS_VERBOSE DREDIS_TIMEOUT

Examples:
  dredis                                      Serve on 0.0.0.0:6379
  dredis -v 127.0.0.1 6380                    Serve on loopback, verbose
  dredis --stats-addr :9121                   Also expose /stats
  dredis --probe 127.0.0.1 6379 -m 'SET k v\r\n' -m 'GET k\r\n'
`)
}
