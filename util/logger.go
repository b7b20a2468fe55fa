// Package util provides low-level helpers shared by all other packages.
package util

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// zerologLevel maps the verbosity ladder onto zerolog's levels.
// Verbose messages are emitted at debug, debug messages at trace.
func (l LogLevel) zerologLevel() zerolog.Level {
	switch {
	case l <= LogQuiet:
		return zerolog.ErrorLevel
	case l == LogNormal:
		return zerolog.InfoLevel
	case l == LogVerbose:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Logger writes levelled messages through zerolog's console writer.
// Child loggers created with With share the parent's settings at the
// time of the call.
type Logger struct {
	level      LogLevel
	output     io.Writer
	timestamps bool
	color      bool
	fields     []field
	zl         zerolog.Logger
}

type field struct {
	key   string
	value interface{}
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug) to stderr.
// Colour is used only when stderr is a terminal.
func NewLogger(verbosity int) *Logger {
	l := &Logger{
		level:      LogLevel(verbosity),
		output:     os.Stderr,
		timestamps: true,
		color:      term.IsTerminal(int(os.Stderr.Fd())),
	}
	l.rebuild()
	return l
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) {
	l.timestamps = on
	l.rebuild()
}

// SetOutput overrides the output writer (default: os.Stderr).  Colour
// is turned off for anything that is not a terminal.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	l.color = false
	if f, ok := w.(*os.File); ok {
		l.color = term.IsTerminal(int(f.Fd()))
	}
	l.rebuild()
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// With returns a child logger that attaches key=value to every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	child := *l
	child.fields = append(append([]field(nil), l.fields...), field{key, value})
	child.rebuild()
	return &child
}

func (l *Logger) rebuild() {
	cw := zerolog.ConsoleWriter{
		Out:        l.output,
		NoColor:    !l.color,
		TimeFormat: "15:04:05.000",
	}
	if !l.timestamps {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	ctx := zerolog.New(cw).Level(l.level.zerologLevel()).With()
	if l.timestamps {
		ctx = ctx.Timestamp()
	}
	for _, f := range l.fields {
		ctx = ctx.Interface(f.key, f.value)
	}
	l.zl = ctx.Logger()
}

// Info prints when verbosity ≥ 1.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn prints when verbosity ≥ 1.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Verbose prints when verbosity ≥ 2.
func (l *Logger) Verbose(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Debug prints when verbosity ≥ 3.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Trace().Msg(fmt.Sprintf(format, args...))
}

// Error always prints regardless of verbosity.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Received logs a read at info with its size and a lossy preview of
// the payload as structured fields.
func (l *Logger) Received(n int, payload []byte) {
	l.zl.Info().
		Int("bytes", n).
		Str("payload", Preview(payload, PreviewLen)).
		Msg("received")
}
