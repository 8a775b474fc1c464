package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the sugared logger shared by all server packages.
// ZSADMIN_LOG_LEVEL overrides the default debug level (e.g. "warn" in tests).
func NewLogger() *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if levelName := os.Getenv("ZSADMIN_LOG_LEVEL"); levelName != "" {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(levelName)); err == nil {
			config.Level = level
		}
	}

	logger, err := config.Build()
	if err != nil {
		log.Panic(err)
	}

	// flushes buffer, if any
	defer logger.Sync()

	return logger.Sugar()
}
