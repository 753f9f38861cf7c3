// Package recorder persists the notes an agent emits with record_info.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrInvalidFileName is returned for names that do not reduce to a plain
// file inside the record directory.
var ErrInvalidFileName = errors.New("recorder: invalid file name")

// Recorder appends text to files under a single directory.
type Recorder struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a Recorder rooted at dir ("~" is expanded). A nil fs uses the
// OS filesystem.
func New(fs afero.Fs, dir string, logger *zap.Logger) (*Recorder, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("recorder: expanding %q: %w", dir, err)
	}
	if expanded == "" {
		expanded = "."
	}
	return &Recorder{
		fs:     fs,
		dir:    filepath.Clean(expanded),
		logger: logger.Named("recorder"),
	}, nil
}

// Dir is the resolved record directory.
func (r *Recorder) Dir() string { return r.dir }

// Record appends text plus a newline to the named file and returns the path
// written. Any directory part of fileName is discarded.
func (r *Recorder) Record(ctx context.Context, fileName, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := sanitize(fileName)
	if err != nil {
		return "", err
	}
	path := filepath.Join(r.dir, name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("recorder: creating %s: %w", r.dir, err)
	}
	f, err := r.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("recorder: opening %s: %w", path, err)
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return "", fmt.Errorf("recorder: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("recorder: closing %s: %w", path, err)
	}

	r.logger.Debug("Recorded info.", zap.String("path", path), zap.Int("bytes", len(text)))
	return path, nil
}

func sanitize(fileName string) (string, error) {
	trimmed := strings.TrimSpace(fileName)
	// Treat both separators alike so Windows-style names are cut on any host.
	base := filepath.Base(strings.ReplaceAll(trimmed, "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, fileName)
	}
	return base, nil
}
