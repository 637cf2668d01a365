package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents the logging level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}

// Logger is the interface for logging operations
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	SetLevel(level Level)
	// With returns a child logger that adds key=value to every entry.
	With(key, value string) Logger
}

// LogConfig holds configuration for the logger
type LogConfig struct {
	// Output destination: "file" or "stderr"
	Output string `yaml:"output"`
	// Log level: "debug", "info", "warn", "error", "fatal"
	Level string `yaml:"level"`
	// FilePath for file output (only used when Output is "file")
	FilePath string `yaml:"file_path"`
	// Format: "console" or "json"
	Format string `yaml:"format"`
	// Writer overrides Output when set. Used by tests.
	Writer io.Writer `yaml:"-"`
}

// zeroLogger implements the Logger interface on top of zerolog
type zeroLogger struct {
	zl    zerolog.Logger
	level Level
	exit  func(int)
}

// NewLogger creates a new logger based on the provided configuration
func NewLogger(config LogConfig) (Logger, error) {
	writer := config.Writer
	if writer == nil {
		var err error
		writer, err = openOutput(config)
		if err != nil {
			return nil, err
		}
	}

	format := config.Format
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	switch format {
	case "", "console":
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339, NoColor: true}
	case "json":
	default:
		return nil, fmt.Errorf("invalid log format: %s (expected 'console' or 'json')", format)
	}

	levelStr := config.Level
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	if levelStr == "" {
		levelStr = "info"
	}
	level := ParseLevel(levelStr)

	zl := zerolog.New(writer).With().Timestamp().Str("service", "pdf-mindmap").Logger().Level(level.zerolog())

	return &zeroLogger{
		zl:    zl,
		level: level,
		exit:  os.Exit,
	}, nil
}

func openOutput(config LogConfig) (io.Writer, error) {
	output := config.Output
	if output == "" {
		output = os.Getenv("LOG_OUTPUT")
	}
	if output == "" {
		output = "stderr"
	}

	switch output {
	case "stderr":
		return os.Stderr, nil
	case "file":
		filePath := config.FilePath
		if filePath == "" {
			filePath = os.Getenv("LOG_FILE_PATH")
		}
		if filePath == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			logDir := filepath.Join(homeDir, ".pdf-mindmap")
			if err := os.MkdirAll(logDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
			filePath = filepath.Join(logDir, "pdf-mindmap.log")
		}

		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return file, nil
	default:
		return nil, fmt.Errorf("invalid log output: %s (expected 'file' or 'stderr')", output)
	}
}

// NewNoOpLogger creates a logger that discards all output (useful for tests)
func NewNoOpLogger() Logger {
	return &zeroLogger{
		zl:    zerolog.Nop(),
		level: FatalLevel,
		exit:  func(int) {},
	}
}

// ParseLevel converts a string to a Level. Unknown values map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

func (l *zeroLogger) SetLevel(level Level) {
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

func (l *zeroLogger) With(key, value string) Logger {
	return &zeroLogger{
		zl:    l.zl.With().Str(key, value).Logger(),
		level: l.level,
		exit:  l.exit,
	}
}

func (l *zeroLogger) Debug(format string, v ...any) {
	l.zl.Debug().Msgf(format, v...)
}

func (l *zeroLogger) Info(format string, v ...any) {
	l.zl.Info().Msgf(format, v...)
}

func (l *zeroLogger) Warn(format string, v ...any) {
	l.zl.Warn().Msgf(format, v...)
}

func (l *zeroLogger) Error(format string, v ...any) {
	l.zl.Error().Msgf(format, v...)
}

// Fatal logs a fatal message and exits
func (l *zeroLogger) Fatal(format string, v ...any) {
	l.zl.WithLevel(zerolog.FatalLevel).Msgf(format, v...)
	l.exit(1)
}
