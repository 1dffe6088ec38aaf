// Package logging configures the structured slog logger of the service and
// provides the request logging middleware.
package logging

import (
	"log/slog"
	"os"

	"github.com/giygas/appmetrics/config"
)

// LoggingService owns the process logger and its log file
type LoggingService struct {
	Logger *slog.Logger
	Writer *RotatingWriter // nil when file logging is disabled
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger from configuration and makes it
// the slog default. File logging failures degrade to console only.
func InitLogger(cfg *config.Config) *LoggingService {
	consoleLevel := GetConsoleLogLevel(cfg.Env, cfg.LogLevel, isVerbose())

	service := &LoggingService{}
	if cfg.LogDir != "" {
		w, err := NewRotatingWriter(cfg.LogDir, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
		if err != nil {
			service.Logger = newLogger(os.Stdout, consoleLevel, nil)
			service.Logger.Error("Failed to initialize log file, logging to console only", "error", err)
		} else {
			service.Writer = w
			service.Logger = newLogger(os.Stdout, consoleLevel, w)
		}
	} else {
		service.Logger = newLogger(os.Stdout, consoleLevel, nil)
	}

	DefaultLoggingService = service
	slog.SetDefault(service.Logger)
	return service
}

// Close flushes and closes the log file, if any
func (s *LoggingService) Close() error {
	if s == nil || s.Writer == nil {
		return nil
	}
	return s.Writer.Close()
}

func logger(level slog.Level) *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger(slog.LevelDebug).Debug(msg, args...)
}
