package spqrlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// ZeroTraceLogger forwards pgx query traces of the postgres counter
// store into Zero.
type ZeroTraceLogger struct{}

// Log implements [tracelog.Logger].
func (z *ZeroTraceLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var event *zerolog.Event
	switch level {
	case tracelog.LogLevelTrace:
		event = Zero.Trace()
	case tracelog.LogLevelDebug:
		event = Zero.Debug()
	case tracelog.LogLevelInfo:
		event = Zero.Info()
	case tracelog.LogLevelWarn:
		event = Zero.Warn()
	case tracelog.LogLevelError:
		event = Zero.Error()
	case tracelog.LogLevelNone:
		fallthrough
	default:
		return
	}
	event.Str("data", fmt.Sprintf("%v", data)).Msg("pgx: " + msg)
}

var _ tracelog.Logger = &ZeroTraceLogger{}

// TraceLevel maps the configured log level onto the pgx trace level.
func TraceLevel(logLevel string) tracelog.LogLevel {
	switch parseLevel(logLevel) {
	case zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}
