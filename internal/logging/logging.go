// Package logging holds the process-wide zap logger for the sandbox agent.
// The level is atomic so it can be changed at runtime when the config file
// is edited.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the process logger. levelName is one of debug/info/warn/error;
// an empty string means info. Safe to call more than once; the last call wins.
func Init(levelName string, development bool) error {
	lvl, err := parseLevel(levelName)
	if err != nil {
		return err
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	level.SetLevel(lvl)
	cfg.Level = level

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mu.Lock()
	logger = built
	mu.Unlock()
	return nil
}

// SetLevel changes the log level of the running logger.
func SetLevel(levelName string) error {
	lvl, err := parseLevel(levelName)
	if err != nil {
		return err
	}
	level.SetLevel(lvl)
	return nil
}

func parseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown log level %q: %w", name, err)
	}
	return lvl, nil
}

// L returns the process logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Sandbox returns the logger for session/environment operations.
func Sandbox() *zap.Logger { return L().Named("sandbox") }

// Provider returns the logger for remote environment provider calls.
func Provider() *zap.Logger { return L().Named("provider") }

// Outputs returns the logger for the command output store.
func Outputs() *zap.Logger { return L().Named("outputs") }

// Tools returns the logger for tool registration and dispatch.
func Tools() *zap.Logger { return L().Named("tools") }

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}
