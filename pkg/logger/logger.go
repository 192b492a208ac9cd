// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the per-request logger injected by middleware.Logger, so
// every line from a handler or service carries the request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order created", "order_id", order.ID.Hex())
//	// → time=... level=INFO msg="order created" request_id=5f0c... order_id=65a1...
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/shopfront/config"
)

var L *slog.Logger

// base is the stdout handler; sinks are layered on top of it.
var base slog.Handler

func init() {
	opts := &slog.HandlerOptions{}

	if config.IsProduction() {
		opts.Level = slog.LevelInfo
		base = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	} else {
		opts.Level = slog.LevelDebug
		base = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	L = slog.New(base)
	slog.SetDefault(L)
}

// EnableMongoSink tees every record into a Mongo collection in addition to
// stdout. The returned close func flushes the queue; call it on shutdown.
func EnableMongoSink(uri, db, collection string) (func(), error) {
	h, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return func() {}, err
	}
	L = slog.New(NewMultiHandler(base, h))
	slog.SetDefault(L)
	return h.Close, nil
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base
// logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware; not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
