package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with the fields apiq attaches to requests.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger from config.
func New(cfg *Config, name string) *Logger {
	cfg.ApplyDefaults()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	output := outputWriter(cfg.Output)

	var zl zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: output, NoColor: cfg.NoColor})
	} else {
		zl = zerolog.New(output)
	}
	zl = zl.Level(level)

	ctx := zl.With().Str(FieldComponent, name)
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}

	return &Logger{logger: ctx.Logger()}
}

// NewDefault creates a console logger at info level.
func NewDefault(name string) *Logger {
	return New(&Config{}, name)
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(zl zerolog.Logger) *Logger {
	return &Logger{logger: zl}
}

// Unwrap returns the underlying zerolog.Logger.
func (l *Logger) Unwrap() zerolog.Logger {
	return l.logger
}

// With returns a logger with additional fields.
func (l *Logger) With(fields map[string]any) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With().Err(err).Logger()}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]any) {
	event := l.logger.Error()
	addFields(event, fields...)
	event.Msg(msg)
}

func addFields(event *zerolog.Event, fields ...map[string]any) {
	for _, m := range fields {
		for k, v := range m {
			event.Interface(k, v)
		}
	}
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}
