package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Error(msg string, err error)
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
}

type zerologLogger struct {
	logger zerolog.Logger
}

var (
	loggerInstance *zerologLogger
	once           sync.Once
)

// New creates a new singleton instance of the logger.
// Output is a console writer; LOG_LEVEL=debug enables debug output.
func New() Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		level := zerolog.InfoLevel
		if os.Getenv("LOG_LEVEL") == "debug" {
			level = zerolog.DebugLevel
		}

		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(level).
			With().Timestamp().Logger()

		loggerInstance = &zerologLogger{logger: zl}
	})
	return loggerInstance
}

func (l *zerologLogger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

func (l *zerologLogger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

func (l *zerologLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *zerologLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}
