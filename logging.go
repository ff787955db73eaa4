package locators

import (
	"context"
	"log/slog"
	"time"
)

// ResolveLogEvent describes one resolution attempt.
type ResolveLogEvent struct {
	Baseline  string
	Target    string
	Direction string
	Applied   []string
	Cached    bool
	Duration  time.Duration
	Err       error
}

// ExtractionLogEvent describes one extraction attempt.
type ExtractionLogEvent struct {
	Engine   string
	Name     string
	Path     string
	Expr     string
	Duration time.Duration
	Err      error
}

// Logger records resolver and extractor events.
type Logger interface {
	LogResolve(ResolveLogEvent)
	LogExtraction(ExtractionLogEvent)
}

// ResolveLoggerFunc adapts a function to Logger, ignoring extraction events.
type ResolveLoggerFunc func(ResolveLogEvent)

func (f ResolveLoggerFunc) LogResolve(event ResolveLogEvent) {
	if f != nil {
		f(event)
	}
}

func (ResolveLoggerFunc) LogExtraction(ExtractionLogEvent) {}

// ExtractionLoggerFunc adapts a function to Logger, ignoring resolve events.
type ExtractionLoggerFunc func(ExtractionLogEvent)

func (ExtractionLoggerFunc) LogResolve(ResolveLogEvent) {}

func (f ExtractionLoggerFunc) LogExtraction(event ExtractionLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogResolve(ResolveLogEvent)       {}
func (noopLogger) LogExtraction(ExtractionLogEvent) {}

// WithLogger attaches a logger to the resolver and its extractor.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger writes events to logger. Failures log at error level,
// resolutions at info and extractions at debug.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slogLogger{logger: logger}
}

func (l slogLogger) LogResolve(event ResolveLogEvent) {
	attrs := []slog.Attr{
		slog.String("baseline", event.Baseline),
		slog.String("target", event.Target),
		slog.Duration("duration", event.Duration),
	}
	if event.Direction != "" {
		attrs = append(attrs, slog.String("direction", event.Direction))
	}
	if len(event.Applied) > 0 {
		attrs = append(attrs, slog.Any("applied", event.Applied))
	}
	if event.Cached {
		attrs = append(attrs, slog.Bool("cached", true))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
		l.logger.LogAttrs(context.Background(), slog.LevelError, "locators resolve failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "locators resolved", attrs...)
}

func (l slogLogger) LogExtraction(event ExtractionLogEvent) {
	attrs := []slog.Attr{
		slog.String("engine", event.Engine),
		slog.String("path", event.Path),
		slog.Duration("duration", event.Duration),
	}
	if event.Name != "" {
		attrs = append(attrs, slog.String("name", event.Name))
	}
	if event.Expr != "" {
		attrs = append(attrs, slog.String("expr", event.Expr))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
		l.logger.LogAttrs(context.Background(), slog.LevelError, "locators extraction failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "locators extraction", attrs...)
}
