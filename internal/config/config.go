package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/logfields"
)

// FileName is the per-directory configuration file picopage looks for.
const FileName = "config.yaml"

// Defaults applied when a key is absent.
const (
	DefaultTheme    = "default"
	DefaultPosition = 100
	StylesheetExt   = ".css"
)

var (
	// ErrMalformed indicates config.yaml exists but could not be decoded.
	ErrMalformed = errors.New("malformed configuration file")
	// ErrMissingTitle indicates the root configuration lacks a title.
	ErrMissingTitle = errors.New("missing required key: title")
	// ErrMissingAuthor indicates the root configuration lacks an author.
	ErrMissingAuthor = errors.New("missing required key: author")
)

// File is the decoded content of one config.yaml. The root directory's file
// describes the site; nested directories only use Title and Position.
type File struct {
	Title    string `yaml:"title"`
	Author   string `yaml:"author"`
	Theme    string `yaml:"theme,omitempty"`
	Position *int   `yaml:"position,omitempty"`

	// Path is the file the values were read from; empty when none was found.
	Path string `yaml:"-"`
}

// Load reads config.yaml from dir.
//
// A missing file is not an error: a warning is logged and an empty File is
// returned. A malformed file also yields an empty File, together with a
// warning-severity config error the caller may escalate.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("No config file", logfields.Path(path))
			return &File{}, nil
		}
		return &File{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read config file").
			Warning().
			WithContext("path", path).
			Build()
	}

	expanded := expandEnv(string(data))

	var cfg File
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return &File{}, ferrors.WrapError(fmt.Errorf("%w: %w", ErrMalformed, err), ferrors.CategoryConfig, "parse config file").
			Warning().
			WithContext("path", path).
			Build()
	}
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.Author = strings.TrimSpace(cfg.Author)
	cfg.Theme = strings.TrimSpace(cfg.Theme)
	cfg.Path = path

	slog.Debug("Loaded config file", logfields.Path(path))
	return &cfg, nil
}

// envRef matches explicit ${VAR} references. Bare $word text is left alone so
// titles such as "Save $5" survive.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv resolves ${VAR} references against the environment (see LoadEnv).
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// TitleOr returns the configured title or def when none was set.
func (f *File) TitleOr(def string) string {
	if f == nil || f.Title == "" {
		return def
	}
	return f.Title
}

// PositionOr returns the configured position or def when none was set.
func (f *File) PositionOr(def int) int {
	if f == nil || f.Position == nil {
		return def
	}
	return *f.Position
}

// ThemeName returns the configured theme, falling back to DefaultTheme.
func (f *File) ThemeName() string {
	if f == nil || f.Theme == "" {
		return DefaultTheme
	}
	return f.Theme
}

// Stylesheet returns the stylesheet file name the theme resolves to.
func (f *File) Stylesheet() string {
	return f.ThemeName() + StylesheetExt
}

// RequireSiteKeys validates the keys mandatory in the root configuration.
// The returned error is fatal: a site cannot be rendered without them.
func (f *File) RequireSiteKeys() error {
	var missing []error
	if f == nil || f.Title == "" {
		missing = append(missing, ErrMissingTitle)
	}
	if f == nil || f.Author == "" {
		missing = append(missing, ErrMissingAuthor)
	}
	if len(missing) == 0 {
		return nil
	}
	b := ferrors.WrapError(errors.Join(missing...), ferrors.CategoryConfig, "invalid root configuration").Fatal()
	if f != nil && f.Path != "" {
		b = b.WithContext("path", f.Path)
	}
	return b.Build()
}
