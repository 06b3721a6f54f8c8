package render

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/picopage/internal/docs"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/logfields"
	"git.home.luguber.info/inful/picopage/internal/site"
	"git.home.luguber.info/inful/picopage/internal/themes"
	"git.home.luguber.info/inful/picopage/internal/version"
)

// Bindings are the variables visible to the page template.
type Bindings struct {
	SiteTitle        string
	PageTitle        string
	Theme            string // stylesheet file name
	Pages            []docs.Page
	CurrentPage      docs.Page
	Author           string
	Description      string
	Root             string
	GeneratorVersion string
}

// Renderer writes one HTML file per page and copies the theme stylesheet.
type Renderer struct {
	reg    *Registry
	styles fs.FS
}

// NewRenderer creates a Renderer using reg for pages and styles for the
// stylesheet lookup.
func NewRenderer(reg *Registry, styles fs.FS) *Renderer {
	return &Renderer{reg: reg, styles: styles}
}

// Render writes every page of s below outDir and then copies the theme
// stylesheet to outDir. It returns the number of HTML files written.
func (r *Renderer) Render(s *site.Site, outDir string) (int, error) {
	written := 0
	for _, page := range s.Pages {
		html, err := r.reg.Execute(themes.PageTemplate, BindingsFor(s, page))
		if err != nil {
			return written, ferrors.WrapError(err, ferrors.CategoryTemplate, "render page").
				Fatal().
				WithContext("page", page.Name).
				Build()
		}

		path := filepath.Join(outDir, filepath.FromSlash(OutputPath(page)))
		if err := writeFile(path, html); err != nil {
			return written, err
		}
		written++
		slog.Debug("Wrote page", logfields.Page(page.Name), logfields.Path(path))
	}

	if err := r.copyStylesheet(s.Stylesheet, outDir); err != nil {
		return written, err
	}
	return written, nil
}

// BindingsFor computes the template variables of page.
func BindingsFor(s *site.Site, page docs.Page) Bindings {
	b := Bindings{
		SiteTitle:        s.Title,
		PageTitle:        page.Name,
		Theme:            s.Stylesheet,
		Pages:            s.Pages,
		CurrentPage:      page,
		Author:           s.Author,
		Root:             RootPrefix(page),
		GeneratorVersion: "picopage " + version.Version,
	}
	if len(page.Articles) > 0 {
		b.Description = page.Articles[0].Summary
	}
	return b
}

func (r *Renderer) copyStylesheet(name, outDir string) error {
	data, err := fs.ReadFile(r.styles, name)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "read theme stylesheet").
			Fatal().
			WithContext("theme", name).
			Build()
	}
	return writeFile(filepath.Join(outDir, name), data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(fmt.Errorf("create output directory: %w", err), ferrors.CategoryFileSystem, "write output").
			Fatal().
			WithContext("path", path).
			Build()
	}
	// #nosec G306 -- generated site files are public assets
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(fmt.Errorf("write output file: %w", err), ferrors.CategoryFileSystem, "write output").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}
