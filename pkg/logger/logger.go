package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/zfogg/wayfarer/cli/pkg/config"
)

var logger *log.Logger

// Init initializes the logger. The level comes from log.level unless verbose
// forces debug output.
func Init(verbose bool) {
	logLevel, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		logLevel = log.InfoLevel
	}
	if verbose {
		logLevel = log.DebugLevel
	}

	var out io.Writer = os.Stderr
	if logFile := config.GetString("log.file"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err == nil {
			out = f
		}
	}

	logger = log.NewWithOptions(out, log.Options{
		Level:           logLevel,
		ReportTimestamp: true,
		Prefix:          "wayfarer",
	})
}

// SetOutput redirects log output, creating the logger if needed
func SetOutput(w io.Writer, level log.Level) {
	logger = log.NewWithOptions(w, log.Options{Level: level, Prefix: "wayfarer"})
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// Fatal logs a fatal message and exits
func Fatal(msg string, args ...interface{}) {
	if logger != nil {
		logger.Fatal(msg, args...)
	} else {
		os.Exit(1)
	}
}

// GetLogger returns the logger instance
func GetLogger() *log.Logger {
	return logger
}
