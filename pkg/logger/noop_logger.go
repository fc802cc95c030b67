package logger

import "context"

// noopLogger discards all log output. Used in tests and as a safe default
// when a component is constructed without a logger.
type noopLogger struct{}

// NewNoop returns a Logger that discards everything.
func NewNoop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(ctx context.Context, message string, fields ...Field)            {}
func (noopLogger) Info(ctx context.Context, message string, fields ...Field)             {}
func (noopLogger) Warn(ctx context.Context, message string, fields ...Field)             {}
func (noopLogger) Error(ctx context.Context, message string, err error, fields ...Field) {}
func (noopLogger) Fatal(ctx context.Context, message string, err error, fields ...Field) {}
func (noopLogger) WithFields(fields ...Field) Logger                                     { return noopLogger{} }
func (noopLogger) WithComponent(component string) Logger                                 { return noopLogger{} }
