package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger implements ports.Logger on top of zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

// New creates a console logger writing to stderr at the given level.
// verbose forces debug level regardless of level.
func New(level string, verbose bool) *ZeroLogger {
	return NewWithWriter(os.Stderr, level, verbose)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(out io.Writer, level string, verbose bool) *ZeroLogger {
	lvl := ParseLevel(level)
	if verbose {
		lvl = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	zl := zerolog.New(output).With().Timestamp().Str("app", "infernav").Logger().Level(lvl)
	return &ZeroLogger{zl: zl}
}

// NewNop returns a logger that discards everything.
func NewNop() *ZeroLogger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

// ParseLevel maps a config string to a zerolog level, defaulting to warn.
func ParseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.WarnLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return level
}

// ValidLevel reports whether raw names a zerolog level.
func ValidLevel(raw string) bool {
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	return err == nil && level != zerolog.NoLevel
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.zl.Error().Err(err).Fields(fields).Msg(msg)
}
