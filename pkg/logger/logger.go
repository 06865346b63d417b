// Package logger определяет интерфейс логирования приложения и его реализацию поверх zerolog.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger — интерфейс логирования, который получают все компоненты приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger создаёт логгер поверх zerolog с выводом в stderr.
func NewZerologLogger() Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return &zerologLogger{
		log: zerolog.New(out).With().Timestamp().Logger(),
	}
}

// NewZerologLoggerWithLevel создаёт логгер с заданным минимальным уровнем.
func NewZerologLoggerWithLevel(level zerolog.Level) Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return &zerologLogger{
		log: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

func (l *zerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *zerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *zerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *zerologLogger) Errorf(err error, format string, args ...any) {
	l.log.Error().Err(err).Msgf(format, args...)
}

// Nop возвращает логгер, который ничего не пишет. Используется в тестах.
func Nop() Logger {
	return &zerologLogger{log: zerolog.Nop()}
}
