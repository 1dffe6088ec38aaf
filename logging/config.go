package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/appmetrics/config"
)

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level for an environment.
// An explicit LOG_LEVEL wins except in tests, which stay quiet unless verbose.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the file level; files always keep debug detail
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// newLogger builds a logger writing text to console and, when file is not
// nil, JSON to file.
func newLogger(console io.Writer, consoleLevel slog.Level, file io.Writer) *slog.Logger {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: consoleLevel})
	if file == nil {
		return slog.New(consoleHandler)
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: GetFileLogLevel()})
	return slog.New(slog.NewMultiHandler(consoleHandler, fileHandler))
}

func isVerbose() bool {
	v := strings.ToLower(os.Getenv("VERBOSE"))
	return v == "1" || v == "true"
}
