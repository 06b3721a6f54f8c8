// Package publish prepares the output directory and copies static assets
// from the source tree into it.
package publish

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/picopage/internal/config"
	"git.home.luguber.info/inful/picopage/internal/docs"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/logfields"
)

// ErrSourceMissing indicates the static copy source does not exist.
var ErrSourceMissing = errors.New("static source does not exist")

// Clean removes dir and everything below it. A missing dir is not an error.
func Clean(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove output directory").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	return nil
}

// Option configures CopyStatic.
type Option func(*copier)

// WithExclude prunes the given paths from the copy.
func WithExclude(paths ...string) Option {
	return func(c *copier) {
		for _, p := range paths {
			if p == "" {
				continue
			}
			if abs, err := filepath.Abs(p); err == nil {
				c.exclude[abs] = struct{}{}
			}
		}
	}
}

type copier struct {
	exclude map[string]struct{}
	copied  int
	errs    []error
}

// IsSourceFile reports whether name is site source rather than a static asset:
// Markdown, YAML configuration and the .env file are never published.
func IsSourceFile(name string) bool {
	if docs.IsMarkdownFile(name) || name == config.EnvFileName {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// CopyStatic copies every static asset below src into dst, preserving the
// relative layout and file modes. Hidden entries, source files and excluded
// paths are skipped. When src is a regular file it is copied into dst.
//
// Failures on individual entries do not stop the copy; they are returned
// joined, as a warning, together with the number of files copied.
func CopyStatic(src, dst string, opts ...Option) (int, error) {
	c := &copier{exclude: map[string]struct{}{}}
	for _, opt := range opts {
		opt(c)
	}

	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(srcAbs)
	if err != nil {
		return 0, ferrors.WrapError(fmt.Errorf("%w: %s: %w", ErrSourceMissing, src, err), ferrors.CategoryFileSystem, "copy static files").
			Fatal().
			WithContext("path", src).
			Build()
	}

	if !info.IsDir() {
		c.copySingle(srcAbs, dst)
	} else {
		c.copyTree(srcAbs, dst)
	}

	if len(c.errs) > 0 {
		return c.copied, ferrors.WrapError(errors.Join(c.errs...), ferrors.CategoryFileSystem, "copy static files").
			Warning().
			WithContext("failed", len(c.errs)).
			Build()
	}
	return c.copied, nil
}

func (c *copier) copySingle(src, dst string) {
	if c.skip(src, filepath.Base(src)) {
		return
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		c.errs = append(c.errs, err)
		return
	}
	c.copyOne(src, filepath.Join(dst, filepath.Base(src)))
}

func (c *copier) copyTree(root, dst string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.errs = append(c.errs, err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		if c.skip(path, d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			c.errs = append(c.errs, err)
			return nil
		}
		target := filepath.Join(dst, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			fi, err := os.Stat(path)
			if err != nil {
				c.errs = append(c.errs, err)
				return nil
			}
			if fi.IsDir() {
				slog.Debug("Skipping symlinked directory", logfields.Path(path))
				return nil
			}
		}
		if d.IsDir() {
			// Directories are created lazily so trees without assets leave no trace.
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			c.errs = append(c.errs, err)
			return nil
		}
		c.copyOne(path, target)
		return nil
	})
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *copier) skip(path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := c.exclude[path]; ok {
		return true
	}
	return IsSourceFile(name)
}

func (c *copier) copyOne(src, dst string) {
	if err := copyFile(src, dst); err != nil {
		slog.Warn("Static file not copied", logfields.Path(src), logfields.Error(err))
		c.errs = append(c.errs, fmt.Errorf("copy %s: %w", src, err))
		return
	}
	c.copied++
}

// copyFile copies a single file from src to dst, preserving its mode.
func copyFile(src, dst string) error {
	// #nosec G304 -- src comes from walking the site source tree
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode().Perm())
}
