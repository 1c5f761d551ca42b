// Package logging owns the process-wide zap logger. Subsystems obtain a
// named child via For, so log lines carry their category (analyzer,
// docstring, llm, batch). Before Init runs the logger is a no-op, which
// keeps library code and tests quiet.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init builds the real logger. Verbose lowers the level to Debug and
// switches to the development encoder for readable console output.
func Init(verbose bool) error {
	config := zap.NewProductionConfig()
	if verbose {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return err
	}
	mu.Lock()
	base = logger
	mu.Unlock()
	return nil
}

// For returns a child logger named after the given subsystem.
func For(category string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.Named(category)
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}
