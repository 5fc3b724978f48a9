package log

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	linregErrors "github.com/YuminosukeSato/linreg/pkg/errors"
)

// ZerologLogger implements Logger on top of zerolog. Loggers derived with
// With share the level of the provider that created them, so SetLevel also
// affects loggers that components captured at construction time.
type ZerologLogger struct {
	zl    zerolog.Logger
	level *atomic.Int64
}

// NewZerologLogger creates a standalone JSON logger writing to w.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	lv := new(atomic.Int64)
	lv.Store(int64(level))
	return &ZerologLogger{
		zl:    zerolog.New(w).With().Timestamp().Logger(),
		level: lv,
	}
}

func (l *ZerologLogger) enabled(level Level) bool {
	return int64(level) >= l.level.Load()
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) {
	if l.enabled(LevelDebug) {
		emit(l.zl.Debug(), msg, fields)
	}
}

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) {
	if l.enabled(LevelInfo) {
		emit(l.zl.Info(), msg, fields)
	}
}

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) {
	if l.enabled(LevelWarn) {
		emit(l.zl.Warn(), msg, fields)
	}
}

// Error implements Logger.Error.
func (l *ZerologLogger) Error(msg string, fields ...any) {
	if l.enabled(LevelError) {
		emit(l.zl.Error(), msg, fields)
	}
}

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{
		zl:    l.zl.With().Fields(normalize(fields)).Logger(),
		level: l.level,
	}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.enabled(level)
}

// warning writes w at warn level, using its MarshalZerologObject when the
// warning type provides one.
func (l *ZerologLogger) warning(w error) {
	if !l.enabled(LevelWarn) {
		return
	}
	ev := l.zl.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		ev = ev.Object(WarningKey, m)
	}
	ev.Msg(w.Error())
}

func emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
			if err, isErr := v.(error); isErr {
				ev = ev.AnErr(key+".message", err)
			}
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

// normalize turns a key-value list into the map form zerolog contexts accept.
func normalize(fields []any) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, isErr := fields[i+1].(error); isErr {
			out[key] = err.Error()
			continue
		}
		out[key] = fields[i+1]
	}
	return out
}

// ZerologProvider is the default LoggerProvider.
type ZerologProvider struct {
	root *ZerologLogger
}

// NewZerologProvider creates a provider whose loggers write JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{root: NewZerologLogger(w, level)}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger { return p.root }

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.root.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.root.level.Store(int64(level))
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

func init() {
	linregErrors.SetZerologWarnFunc(func(w error) {
		logger := GetLogger()
		if zl, ok := logger.(*ZerologLogger); ok {
			zl.warning(w)
			return
		}
		logger.Warn(w.Error(), WarningKey, w)
	})
}

// SetProvider replaces the package-wide provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// SetOutput redirects the default zerolog provider to w, keeping its level.
// A provider installed with SetProvider or SetupLogger is replaced.
func SetOutput(w io.Writer) {
	providerMu.Lock()
	defer providerMu.Unlock()
	level := LevelInfo
	if zp, ok := provider.(*ZerologProvider); ok {
		level = Level(zp.root.level.Load())
	}
	provider = NewZerologProvider(w, level)
}

// GetLogger returns the default logger of the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with ComponentKey=name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	provider.SetLevel(level)
}
