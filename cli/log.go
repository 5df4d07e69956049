package cli

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	logOnce sync.Once
	logger  *zap.SugaredLogger
)

// debugLogger returns the shared debug logger. Logging is disabled
// unless CONSOLEBOX_DEBUG_LOG names a writable file; raw mode owns
// stdout and stderr, so debug output has to go elsewhere.
func debugLogger() *zap.SugaredLogger {
	logOnce.Do(func() {
		path := os.Getenv("CONSOLEBOX_DEBUG_LOG")
		if path == "" {
			logger = zap.NewNop().Sugar()
			return
		}
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
		l, err := cfg.Build()
		if err != nil {
			logger = zap.NewNop().Sugar()
			return
		}
		logger = l.Sugar()
	})
	return logger
}

func debugf(format string, args ...interface{}) {
	debugLogger().Debugf(format, args...)
}
