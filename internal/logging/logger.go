package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
)

// Logger defines a minimal, printf-style logging contract.
//
// The scanner, cache and API client depend on this interface instead of a
// concrete backend so tests can swap in a no-op or capturing logger.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

// printfLogger adapts a structured slog.Logger to the printf-style Logger
// interface. Every message is sanitized before it reaches the sink so API
// keys never land in the log file.
type printfLogger struct {
	logger *slog.Logger
}

func (l *printfLogger) Debug(format string, args ...any) {
	l.logger.Debug(Sanitize(fmt.Sprintf(format, args...)))
}

func (l *printfLogger) Info(format string, args ...any) {
	l.logger.Info(Sanitize(fmt.Sprintf(format, args...)))
}

func (l *printfLogger) Warn(format string, args ...any) {
	l.logger.Warn(Sanitize(fmt.Sprintf(format, args...)))
}

func (l *printfLogger) Error(format string, args ...any) {
	l.logger.Error(Sanitize(fmt.Sprintf(format, args...)))
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *slog.Logger
)

// Setup installs the process-wide logger described by cfg. The sink is a
// file so terminal output stays clean; failure to open it degrades to a
// discard logger instead of failing the command.
func Setup(cfg Config) error {
	output, err := openSink(cfg.File)
	if err != nil {
		output = io.Discard
	}
	logger := slog.New(newHandler(cfg, output))
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	return err
}

func newHandler(cfg Config, output io.Writer) slog.Handler {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(output, opts)
	}
	return slog.NewTextHandler(output, opts)
}

func openSink(path string) (io.Writer, error) {
	if path == "" {
		return io.Discard, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func activeLogger() *slog.Logger {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	if logger != nil {
		return logger
	}

	cfg, _ := LoadConfig("")
	_ = Setup(cfg)

	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// NewComponentLogger returns the application logger scoped to a component.
func NewComponentLogger(component string) Logger {
	return &printfLogger{logger: activeLogger().With("component", component)}
}

// NewWriterLogger returns a logger emitting to w with the given level and
// format.
func NewWriterLogger(cfg Config, w io.Writer) Logger {
	return &printfLogger{logger: slog.New(newHandler(cfg, w))}
}

type multiLogger struct {
	loggers []Logger
}

// Multi returns a logger fan-out that calls every non-nil logger in order.
func Multi(loggers ...Logger) Logger {
	flattened := make([]Logger, 0, len(loggers))
	for _, logger := range loggers {
		if IsNil(logger) {
			continue
		}
		if ml, ok := logger.(*multiLogger); ok {
			flattened = append(flattened, ml.loggers...)
			continue
		}
		flattened = append(flattened, logger)
	}
	if len(flattened) == 0 {
		return Nop()
	}
	if len(flattened) == 1 {
		return flattened[0]
	}
	return &multiLogger{loggers: flattened}
}

func (l *multiLogger) Debug(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Debug(format, args...)
	}
}

func (l *multiLogger) Info(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Info(format, args...)
	}
}

func (l *multiLogger) Warn(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Warn(format, args...)
	}
}

func (l *multiLogger) Error(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Error(format, args...)
	}
}
