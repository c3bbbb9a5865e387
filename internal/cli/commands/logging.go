package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// LogLevels lists the accepted --log-level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

type loggerKey struct{}

// NewLogger creates a logfmt logger writing to w that drops records below
// the named level.
func NewLogger(w io.Writer, lvl string) (log.Logger, error) {
	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "info", "":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	return logger, nil
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom returns the logger stored in ctx, or a no-op logger.
func LoggerFrom(ctx context.Context) log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(log.Logger); ok {
			return logger
		}
	}
	return log.NewNopLogger()
}
