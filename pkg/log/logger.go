package log

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// ToLevel parses "debug", "info", "warn" or "error" (case-insensitive).
func ToLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Newf("invalid log level: %q", level)
	}
}

// NewCloudLoggingHandler returns a JSON slog handler whose records follow
// the Cloud Logging field names (severity, message, sourceLocation), wrapped
// with ErrFmtHandler.
func NewCloudLoggingHandler(w io.Writer, level Level) slog.Handler {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     slog.Level(level),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Key = "severity"
			case slog.MessageKey:
				attr.Key = "message"
			case slog.SourceKey:
				attr.Key = "logging.googleapis.com/sourceLocation"
			}
			return attr
		},
	}
	return WrapByErrFmtHandler(slog.NewJSONHandler(w, &ops))
}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a Logger backed by handler.
func NewSlogLogger(handler slog.Handler) *SlogLogger {
	return &SlogLogger{logger: slog.New(handler)}
}

// Debug implements Logger.Debug.
func (s *SlogLogger) Debug(msg string, fields ...any) { s.logger.Debug(msg, fields...) }

// Info implements Logger.Info.
func (s *SlogLogger) Info(msg string, fields ...any) { s.logger.Info(msg, fields...) }

// Warn implements Logger.Warn.
func (s *SlogLogger) Warn(msg string, fields ...any) { s.logger.Warn(msg, fields...) }

// Error implements Logger.Error.
func (s *SlogLogger) Error(msg string, fields ...any) { s.logger.Error(msg, fields...) }

// With implements Logger.With.
func (s *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{logger: s.logger.With(fields...)}
}

// Enabled implements Logger.Enabled.
func (s *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger.Enabled(ctx, slog.Level(level))
}

// SetupLogger switches the package default to a slog logger writing Cloud
// Logging formatted JSON to w, and installs it as the slog default as well.
func SetupLogger(w io.Writer, loglevel string) error {
	level, err := ToLevel(loglevel)
	if err != nil {
		return err
	}
	l := NewSlogLogger(NewCloudLoggingHandler(w, level))
	slog.SetDefault(l.logger)
	SetProvider(&staticProvider{logger: l})
	return nil
}

// staticProvider hands out a fixed Logger; SetLevel is a no-op because the
// slog handler owns its level.
type staticProvider struct {
	logger Logger
}

func (p *staticProvider) GetLogger() Logger { return p.logger }

func (p *staticProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

func (p *staticProvider) SetLevel(Level) {}
