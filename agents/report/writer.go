/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
)

// separator is written between existing content and appended content.
const separator = "\n\n"

// Result is the outcome of a write. Failures are reported here rather than
// returned as errors so that callers decide whether a missing report is fatal.
type Result struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
	Error    string `json:"error,omitempty"`

	err error
}

// Err returns a *PersistenceError for failed writes and nil otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &PersistenceError{Path: r.FilePath, Err: r.err}
}

// PersistenceError describes a failed report write.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("writing report %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Writer persists text documents beneath a root directory.
type Writer struct {
	root    string
	confine bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer) error

// WithConfinement rejects paths that resolve outside the root directory.
func WithConfinement() WriterOption {
	return func(w *Writer) error {
		if w.root == "" {
			return errors.New("confinement requires a root directory")
		}
		w.confine = true
		return nil
	}
}

// NewWriter creates a Writer. Relative paths are resolved against root; an
// empty root leaves paths untouched.
func NewWriter(root string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{}
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving root %q: %w", root, err)
		}
		w.root = abs
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return w, nil
}

// Root returns the absolute root directory, or "" when unset.
func (w *Writer) Root() string {
	return w.root
}

// Resolve maps path onto the writer's root.
func (w *Writer) Resolve(path string) (string, error) {
	if path == "" {
		return "", errors.New("path is required")
	}
	if w.root == "" {
		return filepath.Clean(path), nil
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(w.root, path)
	}
	full = filepath.Clean(full)
	if w.confine {
		rel, err := filepath.Rel(w.root, full)
		if err != nil {
			return "", fmt.Errorf("path %q: %w", path, err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("path %q escapes %s", path, w.root)
		}
	}
	return full, nil
}

// Write stores content at path, creating parent directories. In append mode
// the content is added after a blank line when the file already has content.
func (w *Writer) Write(ctx context.Context, content, path string, appendMode bool) Result {
	log := clog.FromContext(ctx)

	full, err := w.Resolve(path)
	if err != nil {
		return failed(ctx, path, err)
	}
	if err := ctx.Err(); err != nil {
		return failed(ctx, full, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return failed(ctx, full, err)
	}

	if appendMode {
		err = appendFile(full, content)
	} else {
		err = replaceFile(full, content)
	}
	if err != nil {
		return failed(ctx, full, err)
	}

	log.With("path", full).With("append", appendMode).With("bytes", len(content)).Info("Wrote report")
	return Result{Success: true, FilePath: full}
}

func failed(ctx context.Context, path string, err error) Result {
	clog.FromContext(ctx).With("path", path).With("error", err).Error("Error writing markdown file")
	return Result{FilePath: path, Error: err.Error(), err: err}
}

func appendFile(path, content string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() > 0 {
		content = separator + content
	}
	if _, err := f.WriteString(content); err != nil {
		return err
	}
	return f.Sync()
}

// replaceFile writes through a temporary file in the same directory so a
// reader never observes partial content.
func replaceFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
