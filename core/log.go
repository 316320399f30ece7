package core

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// NewLogger creates a logger from configuration. Unknown levels
// fall back to info.
func NewLogger(cfg LogConfiguration) *log.Logger {
	logger := log.New()
	logger.Out = os.Stderr

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}

// LoggerOr returns l, or the standard logger if l is nil
func LoggerOr(l log.FieldLogger) log.FieldLogger {
	if l == nil {
		return log.StandardLogger()
	}
	return l
}
