// Package logger provides connection-oriented log service for the client,
// adapted from the teacher's context-tagged level logger but backed by
// zap so fields (connection id, Bolt version, server address) can be
// attached structurally instead of string-formatted.
//
//	logger.Info(ctx, "connected", zap.String("addr", addr))
//	logger.Trace(ctx, "sent request", zap.String("kind", kind.String()))
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Context identifies the goroutine/connection a log line belongs to, kept
// from the teacher's Cid-based correlation scheme.
type Context interface {
	Cid() int
}

var base = newBase()

func newBase() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		// fall back to a minimal logger rather than leave base nil.
		l = zap.NewNop()
	}
	return l
}

// SetLevel raises the global minimum level.
func SetLevel(lvl zapcore.Level) {
	base = base.WithOptions(zap.IncreaseLevel(lvl))
}

func withCtx(ctx Context, fields []zap.Field) []zap.Field {
	fields = append(fields, zap.Int("pid", os.Getpid()))
	if ctx != nil {
		fields = append(fields, zap.Int("cid", ctx.Cid()))
	}
	return fields
}

// Trace logs at debug level: per-request protocol chatter.
func Trace(ctx Context, msg string, fields ...zap.Field) {
	base.Debug(msg, withCtx(ctx, fields)...)
}

// Info logs at info level: connection lifecycle events.
func Info(ctx Context, msg string, fields ...zap.Field) {
	base.Info(msg, withCtx(ctx, fields)...)
}

// Warn logs at warn level: recoverable failures (Failed state entered,
// Reset issued, idle connection reaped).
func Warn(ctx Context, msg string, fields ...zap.Field) {
	base.Warn(msg, withCtx(ctx, fields)...)
}

// Error logs at error level: fatal connection failures (I/O errors,
// handshake failures, transitions to Defunct).
func Error(ctx Context, msg string, fields ...zap.Field) {
	base.Error(msg, withCtx(ctx, fields)...)
}
