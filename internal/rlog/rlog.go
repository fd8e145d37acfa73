// Package rlog wraps the *zap.Logger every constructor in this module
// accepts, giving RecordProtocol and its collaborators a single place
// to attach connection-scoped fields (role, datagram) without every
// call site repeating them.
package rlog

import "go.uber.org/zap"

// Logger wraps a *zap.Logger; With attaches connection-scoped fields.
type Logger struct {
	z *zap.Logger
}

// New wraps base, or returns a no-op Logger if base is nil so callers
// never need a nil check before logging.
func New(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{z: base}
}

// With returns a Logger with additional structured fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
