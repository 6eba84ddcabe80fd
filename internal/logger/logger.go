// Package logger configures the process-wide zap logger. Components receive a
// *zap.Logger at construction and bind their own fields; the global accessor
// exists for places that run before wiring is complete (config loading, env
// parsing).
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global   *zap.Logger
	initOnce sync.Once
)

// New builds a JSON logger writing to stdout. In the "dev" environment the
// level drops to debug so request-by-request limiter and breaker decisions are
// visible.
func New(env string) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if env == "dev" {
		level.SetLevel(zap.DebugLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(os.Stdout),
		level,
	)
	return zap.New(core, zap.AddCaller())
}

// Initialize sets the global logger once. Safe to call concurrently.
func Initialize(l *zap.Logger) {
	initOnce.Do(func() { global = l })
}

// Global returns the global logger, defaulting to a production logger when
// Initialize was never called.
func Global() *zap.Logger {
	if global == nil {
		Initialize(New(""))
	}
	return global
}
