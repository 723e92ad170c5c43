package logger

import (
	"log"

	"go.uber.org/zap"
)

var base *zap.Logger

// Init builds the process-wide logger. env "prod" gets JSON output,
// anything else gets the development console encoder.
func Init(env string) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	base = l
}

// L returns the shared logger, falling back to a no-op logger so tests
// that never call Init do not need to.
func L() *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base
}

func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
