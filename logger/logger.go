// Package logger initializes the zerolog logger used across the
// library's executables.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Init initializes the file logger, writing to promptwire.log in the
// current directory. Log level comes from the LOG_LEVEL environment
// variable (trace, debug, info, warn, error).
func Init() (zerolog.Logger, error) {
	return InitWithOptions("promptwire.log", false)
}

// InitWithOptions initializes the logger with the specified options.
// If logFile is empty, logs go to stdout; pretty selects the
// human-readable console writer for stdout output.
func InitWithOptions(logFile string, pretty bool) (zerolog.Logger, error) {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))

	switch {
	case logFile != "":
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		return zerolog.New(file).Level(level).With().Timestamp().Logger(), nil
	case pretty:
		writer := zerolog.ConsoleWriter{Out: os.Stdout}
		return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
	default:
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger(), nil
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
