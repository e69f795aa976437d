package spqrlog

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var Zero = NewZeroLogger("", "info", false)

// NewZeroLogger builds the process logger. Output goes to stdout unless
// filepath is set. JSON is the default format, pretty enables the console writer.
func NewZeroLogger(filepath string, logLevel string, pretty bool) *zerolog.Logger {
	_, writer, err := newWriter(filepath)
	if err != nil {
		writer = io.Discard
	}
	return newLogger(writer, logLevel, pretty)
}

func newLogger(writer io.Writer, logLevel string, pretty bool) *zerolog.Logger {
	if pretty {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(parseLevel(logLevel))
	return &logger
}

func UpdateZeroLogLevel(logLevel string) error {
	level := parseLevel(logLevel)
	zeroLogger := Zero.With().Logger().Level(level)
	Zero = &zeroLogger
	return nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning", "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
