// Package logging configures logrus for the app. Output goes to a file
// because the terminal belongs to the TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Init points logger at path with JSON output. The returned closer releases
// the file. An empty path discards all output.
func Init(logger *logrus.Logger, path string, level logrus.Level) (io.Closer, error) {
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(level)

	if path == "" {
		logger.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return f, nil
}

// Component returns an entry tagged with the component name.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}
