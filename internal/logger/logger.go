// Package logger wraps a process-wide zap logger.  Call sites log with a
// "Component:Method:Event" message followed by alternating key/value pairs,
// for example:
//
//	logger.Info("BookingLedger:Append:Success", "booking_id", id)
//
// Until Init is called every function logs to a no-op logger so packages can
// be used (and tested) without any setup.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init builds the global logger for the given environment.  "prod" and
// "production" use zap's JSON production config; anything else gets the
// human-readable development config.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch env {
	case "prod", "production":
		l, err = zap.NewProduction()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set replaces the global logger.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	sugar = l.Sugar()
}

// L returns the underlying zap logger, e.g. for libraries that want one.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar.Desugar()
}

// Sync flushes buffered entries.  Errors from syncing stderr are ignored.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(msg string, kv ...any) { get().Debugw(msg, kv...) }

func Info(msg string, kv ...any) { get().Infow(msg, kv...) }

func Warn(msg string, kv ...any) { get().Warnw(msg, kv...) }

func Error(msg string, kv ...any) { get().Errorw(msg, kv...) }
