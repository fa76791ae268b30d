package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// New returns the application logger writing to path. The TUI owns the
// terminal, so logs never go to stdout. An empty path discards output.
// The returned closer releases the file.
func New(path, level string) (hclog.Logger, io.Closer, error) {
	if path == "" {
		return hclog.NewNullLogger(), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "studylog",
		Level:  lvl,
		Output: f,
	})
	return logger, f, nil
}
