// Package site combines the root configuration with the assembled pages into
// the model the renderer consumes.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"git.home.luguber.info/inful/picopage/internal/config"
	"git.home.luguber.info/inful/picopage/internal/docs"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/themes"
)

var (
	// ErrUnknownTheme indicates the configured theme has no stylesheet.
	ErrUnknownTheme = errors.New("unknown theme")
	// ErrInvalidPages indicates the page list breaks the index invariant.
	ErrInvalidPages = errors.New("invalid page list")
)

// Site is the fully assembled site.
type Site struct {
	Title      string
	Author     string
	Theme      string // theme name, e.g. "default"
	Stylesheet string // stylesheet file name, e.g. "default.css"
	Pages      []docs.Page
}

// Build validates cfg and pages and combines them into a Site.
// A root configuration without title or author is a fatal config error.
func Build(cfg *config.File, pages []docs.Page) (*Site, error) {
	if err := cfg.RequireSiteKeys(); err != nil {
		return nil, err
	}
	if err := checkIndex(pages); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "assemble site").Fatal().Build()
	}
	return &Site{
		Title:      cfg.Title,
		Author:     cfg.Author,
		Theme:      cfg.ThemeName(),
		Stylesheet: cfg.Stylesheet(),
		Pages:      append([]docs.Page(nil), pages...),
	}, nil
}

// CheckTheme verifies the site's stylesheet exists in styles.
func (s *Site) CheckTheme(styles fs.FS) error {
	if themes.Has(styles, s.Stylesheet) {
		return nil
	}
	return ferrors.WrapError(fmt.Errorf("%w: %q", ErrUnknownTheme, s.Theme), ferrors.CategoryConfig, "resolve theme").
		Fatal().
		WithContext("theme", s.Theme).
		WithContext("available", strings.Join(themes.Names(styles), ",")).
		Build()
}

// Index returns the root page.
func (s *Site) Index() docs.Page {
	for _, p := range s.Pages {
		if p.IsIndex {
			return p
		}
	}
	return docs.Page{}
}

// ArticleCount sums the articles over all pages.
func (s *Site) ArticleCount() int {
	return docs.CountArticles(s.Pages)
}

func checkIndex(pages []docs.Page) error {
	n := 0
	for _, p := range pages {
		if !p.IsIndex {
			continue
		}
		n++
		if p.Position != 0 {
			return fmt.Errorf("%w: index page at position %d", ErrInvalidPages, p.Position)
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: %d index pages", ErrInvalidPages, n)
	}
	return nil
}
