// Package common provides shared utilities for stocktrack
package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

// NewLogger creates a console logger with the specified level
func NewLogger(level string) *Logger {
	logger := arbor.NewLogger().WithConsoleWriter(consoleWriter())
	return &Logger{ILogger: logger.WithLevelFromString(level)}
}

// NewLoggerFromConfig builds a logger with the configured writers.
// Unknown outputs are ignored; with no usable output the console is used.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	logger := arbor.NewLogger()
	writers := 0

	for _, output := range cfg.Outputs {
		switch output {
		case "console", "stdout":
			logger = logger.WithConsoleWriter(consoleWriter())
			writers++
		case "file":
			path := cfg.FilePath
			if path == "" {
				path = "./logs/stocktrack.log"
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
				continue
			}
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   path,
				TimeFormat: "15:04:05",
				MaxSize:    100 * 1024 * 1024, // 100 MB
				MaxBackups: 3,
				OutputType: models.OutputFormatLogfmt,
			})
			writers++
		}
	}

	if writers == 0 {
		logger = logger.WithConsoleWriter(consoleWriter())
	}

	return &Logger{ILogger: logger.WithLevelFromString(cfg.Level)}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger with no writers attached
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger()}
}

func consoleWriter() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
	}
}
