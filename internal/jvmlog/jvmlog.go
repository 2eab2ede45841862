// Package jvmlog provides the structured logger shared by every gojvm
// component. It wraps zap the way a production CLI tool does: a
// development (console, debug-level) logger when GOJVM_DEBUG is set,
// a production (JSON, info-level) logger otherwise.
package jvmlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// L returns the process-wide sugared logger, building it on first use.
func L() *zap.SugaredLogger {
	once.Do(func() {
		var z *zap.Logger
		var err error
		if os.Getenv("GOJVM_DEBUG") != "" {
			z, err = zap.NewDevelopment()
		} else {
			cfg := zap.NewProductionConfig()
			cfg.DisableStacktrace = true
			z, err = cfg.Build()
		}
		if err != nil {
			z = zap.NewNop()
		}
		logger = z.Sugar()
	})
	return logger
}

// Sync flushes any buffered log entries. The CLI calls this on exit.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
