package helpers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"sjsage522/tapeworker/logger"
	"sjsage522/tapeworker/pkg/errors"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(shopName string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger logs through zerolog and optionally appends errors to a file
type Logger struct {
	errorFile string
	log       *logger.Logger
	mu        sync.Mutex
}

// NewLogger creates a new logger instance. An empty errorFile disables the
// error file.
func NewLogger(errorFile string) *Logger {
	return &Logger{
		errorFile: errorFile,
		log:       logger.ForComponent("worker"),
	}
}

// LogError logs an error with shop name, and appends it to the error file.
// Pipeline errors are tagged with their type and whether a rerun may help.
func (l *Logger) LogError(shopName string, err error) {
	fields := logger.Fields{"shop": shopName}
	if typ, ok := errors.TypeOf(err); ok {
		fields["error_type"] = string(typ)
		fields["retryable"] = errors.IsRetryable(err)
	}
	l.log.WithFields(fields).WithError(err).Error().Msg("shop failed")

	if l.errorFile == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		l.log.Warn().Err(fileErr).Str("file", l.errorFile).Msg("failed to open error log")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, shopName, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}
