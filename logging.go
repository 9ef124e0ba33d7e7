package opts

import (
	"context"
	"log/slog"
	"time"
)

// Operations reported through LogEvent.Op.
const (
	OpEncode   = "encode"
	OpDecode   = "decode"
	OpEvaluate = "evaluate"
	OpNotify   = "notify"
	OpBind     = "bind"
)

// LogEvent describes a store operation worth recording. Decode failures are
// never returned to callers, so the logger is the only place they surface.
type LogEvent struct {
	Op       string
	Key      string
	Type     string
	Strategy string
	Expr     string
	Duration time.Duration
	Err      error
}

// Logger records store events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// WithLogger attaches a logger to the store.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// NewSlogLogger returns a Logger writing events to logger. Failed events are
// logged at warn level, the rest at debug level.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Log(event LogEvent) {
	attrs := []slog.Attr{slog.String("op", event.Op)}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.Type != "" {
		attrs = append(attrs, slog.String("type", event.Type))
	}
	if event.Strategy != "" {
		attrs = append(attrs, slog.String("strategy", event.Strategy))
	}
	if event.Expr != "" {
		attrs = append(attrs, slog.String("expr", event.Expr))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "opts "+event.Op, attrs...)
}
