package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger carrying a fixed set of context fields
type Logger struct {
	zl zerolog.Logger
}

// Fields are attached to every event of a derived logger
type Fields map[string]interface{}

// Default is the process-wide logger, set up lazily on first use
var Default *Logger

// Init sends console output to stdout
func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter replaces Default with a console logger writing to out.
// The level comes from LOG_LEVEL, or from TAPE_ENVIRONMENT when unset.
func InitWithWriter(out io.Writer) {
	level := levelFromEnv()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	Default = &Logger{zl: zerolog.New(console).With().Timestamp().Logger()}
	Default.Debug().Str("level", level.String()).Msg("Logger initialized")
}

func levelFromEnv() zerolog.Level {
	name := os.Getenv("LOG_LEVEL")
	if name == "" {
		if os.Getenv("TAPE_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func std() *Logger {
	if Default == nil {
		Init()
	}
	return Default
}

// WithFields derives a logger that adds fields to every event
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{zl: l.zl.With().Fields(map[string]interface{}(fields)).Logger()}
}

// WithField derives a logger with one extra field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithError derives a logger that reports err on every event
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Fatal logs at fatal level and exits once the event is sent
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Info logs a formatted message on Default
func Info(format string, v ...interface{}) {
	std().Info().Msgf(format, v...)
}

// Warn logs a formatted message on Default
func Warn(format string, v ...interface{}) {
	std().Warn().Msgf(format, v...)
}

// Error logs a formatted message on Default
func Error(format string, v ...interface{}) {
	std().Error().Msgf(format, v...)
}

// ForShop tags Default with a shop name
func ForShop(shop string) *Logger {
	return std().WithField("shop", shop)
}

// ForComponent tags Default with a component name
func ForComponent(component string) *Logger {
	return std().WithField("component", component)
}
