package engram

import "go.uber.org/zap"

// Logger is the interface every engram component logs through. The shape
// (Debug/Info/Warn/Error/With) lets call sites stay backend-agnostic; the
// shipped implementation is backed by zap.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

// zapLogger adapts *zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger wraps a *zap.Logger as an engram Logger.
func NewLogger(z *zap.Logger) Logger {
	return &zapLogger{sugar: z.Sugar()}
}

// NewProductionLogger builds a zap production logger (JSON, info level)
// wrapped as a Logger. Falls back to a no-op logger if zap construction
// fails, which only happens under a broken encoder config.
func NewProductionLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return NopLogger()
	}
	return NewLogger(z)
}

func (l *zapLogger) Debug(msg string, keyvals ...any) { l.sugar.Debugw(msg, keyvals...) }
func (l *zapLogger) Info(msg string, keyvals ...any)  { l.sugar.Infow(msg, keyvals...) }
func (l *zapLogger) Warn(msg string, keyvals ...any)  { l.sugar.Warnw(msg, keyvals...) }
func (l *zapLogger) Error(msg string, keyvals ...any) { l.sugar.Errorw(msg, keyvals...) }

func (l *zapLogger) With(keyvals ...any) Logger {
	return &zapLogger{sugar: l.sugar.With(keyvals...)}
}

// nopLogger discards everything; used as a safe default when the host
// doesn't configure a Logger.
type nopLogger struct{}

func (nopLogger) Debug(msg string, keyvals ...any) {}
func (nopLogger) Info(msg string, keyvals ...any)  {}
func (nopLogger) Warn(msg string, keyvals ...any)  {}
func (nopLogger) Error(msg string, keyvals ...any) {}
func (n nopLogger) With(keyvals ...any) Logger     { return n }

// NopLogger returns a Logger that discards all messages.
func NopLogger() Logger {
	return nopLogger{}
}
