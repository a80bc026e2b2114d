package logger

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

// New builds a logger for env. "production" writes JSON to stdout; anything
// else writes colored console lines. level (debug, info, warn, error)
// overrides the default level of the environment when set.
func New(env, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	return cfg.Build(zap.Fields(zap.String("app", "bookmarket")))
}

// Init installs the process logger.
func Init(env, level string) error {
	l, err := New(env, level)
	if err != nil {
		return err
	}
	current.Store(l)
	return nil
}

// L returns the process logger, building a default one on first use.
func L() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	l, err := New(os.Getenv("APP_ENV"), "")
	if err != nil {
		l = zap.NewNop()
	}
	current.CompareAndSwap(nil, l)
	return current.Load()
}

// Use swaps in l (an observer core in tests) and returns the restore func.
func Use(l *zap.Logger) (restore func()) {
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

func Sync() {
	if l := current.Load(); l != nil {
		_ = l.Sync()
	}
}
