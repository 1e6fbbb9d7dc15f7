package logging

import "context"

type scanIDKey struct{}

// ContextWithScanID stores a scan correlation ID on the context so
// components beneath the scanner can tag their log lines with it.
func ContextWithScanID(ctx context.Context, scanID string) context.Context {
	if scanID == "" {
		return ctx
	}
	return context.WithValue(ctx, scanIDKey{}, scanID)
}

// ScanIDFromContext returns the scan ID stored on ctx, or "".
func ScanIDFromContext(ctx context.Context) string {
	scanID, _ := ctx.Value(scanIDKey{}).(string)
	return scanID
}

// WithScanID returns a logger that tags every line with the scan ID.
func WithScanID(logger Logger, scanID string) Logger {
	if IsNil(logger) {
		return Nop()
	}
	if scanID == "" {
		return logger
	}
	return &scanIDLogger{logger: logger, scanID: scanID}
}

// FromContext returns logger tagged with the scan ID found in ctx, if any.
func FromContext(ctx context.Context, logger Logger) Logger {
	return WithScanID(logger, ScanIDFromContext(ctx))
}

type scanIDLogger struct {
	logger Logger
	scanID string
}

func (l *scanIDLogger) Debug(format string, args ...any) {
	l.logger.Debug(prefixScanID(l.scanID, format), args...)
}

func (l *scanIDLogger) Info(format string, args ...any) {
	l.logger.Info(prefixScanID(l.scanID, format), args...)
}

func (l *scanIDLogger) Warn(format string, args ...any) {
	l.logger.Warn(prefixScanID(l.scanID, format), args...)
}

func (l *scanIDLogger) Error(format string, args ...any) {
	l.logger.Error(prefixScanID(l.scanID, format), args...)
}

func prefixScanID(scanID, format string) string {
	if scanID == "" {
		return format
	}
	return "scan=" + scanID + " " + format
}
