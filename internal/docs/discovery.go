package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/picopage/internal/config"
	derrors "git.home.luguber.info/inful/picopage/internal/docs/errors"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/logfields"
)

// Assembler discovers pages and articles in a source tree.
type Assembler struct {
	parser  *ArticleParser
	exclude map[string]struct{}
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithExclude prunes the given directories (and their subtrees) from the walk,
// e.g. an output directory placed inside the source tree.
func WithExclude(paths ...string) Option {
	return func(a *Assembler) {
		for _, p := range paths {
			if p == "" {
				continue
			}
			if abs, err := filepath.Abs(p); err == nil {
				a.exclude[abs] = struct{}{}
			}
		}
	}
}

// NewAssembler creates an Assembler using parser for every Markdown file.
func NewAssembler(parser *ArticleParser, opts ...Option) *Assembler {
	if parser == nil {
		parser = NewArticleParser(nil)
	}
	a := &Assembler{parser: parser, exclude: map[string]struct{}{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the ordered page list for root.
//
// The root itself is always the index page (position 0, stub "index"), even
// when it holds no Markdown. Every nested directory, at any depth, with at
// least one Markdown file directly inside becomes a page; directories without
// Markdown are skipped but still descended into. Excluded directories are
// pruned. Pages are stable-sorted by position, so ties keep the lexicographic
// walk order.
func (a *Assembler) Assemble(root string) ([]Page, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrRootNotDirectory, root, err)
	}
	if fi, err := os.Stat(rootAbs); err != nil || !fi.IsDir() {
		return nil, ferrors.WrapError(fmt.Errorf("%w: %s", derrors.ErrRootNotDirectory, root), ferrors.CategoryDocs, "invalid source root").
			Fatal().
			WithContext("path", root).
			Build()
	}

	articles, err := a.readArticles(rootAbs)
	if err != nil {
		return nil, err
	}
	pages := []Page{{
		Name:     filepath.Base(rootAbs),
		Position: 0,
		Stub:     IndexStub,
		Articles: articles,
		IsIndex:  true,
		Dir:      ".",
	}}

	err = filepath.WalkDir(rootAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == rootAbs {
			return nil
		}
		if a.excluded(path) {
			return filepath.SkipDir
		}

		articles, err := a.readArticles(path)
		if err != nil {
			return err
		}
		if len(articles) == 0 {
			slog.Debug("Skipping directory without markdown", logfields.Path(path))
			return nil
		}

		cfg, cerr := config.Load(path)
		if cerr != nil {
			slog.Warn("Ignoring page configuration", logfields.Path(path), logfields.Error(cerr))
		}

		rel, err := filepath.Rel(rootAbs, path)
		if err != nil {
			return err
		}
		page := Page{
			Name:     cfg.TitleOr(d.Name()),
			Position: cfg.PositionOr(DefaultPosition),
			Stub:     d.Name(),
			Articles: articles,
			Dir:      filepath.ToSlash(rel),
		}
		slog.Debug("Discovered page",
			logfields.Page(page.Name),
			logfields.Stub(page.Stub),
			slog.Int("position", page.Position),
			logfields.Count(len(articles)))
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		if ferrors.IsClassified(err) {
			return nil, err
		}
		return nil, ferrors.WrapError(fmt.Errorf("%w: %w", derrors.ErrDirWalkFailed, err), ferrors.CategoryDocs, "walk source tree").
			Fatal().
			WithContext("path", root).
			Build()
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Position < pages[j].Position
	})

	if err := checkStubs(pages); err != nil {
		return nil, err
	}

	slog.Info("Assembled pages", logfields.Count(len(pages)), slog.Int("articles", CountArticles(pages)))
	return pages, nil
}

// readArticles parses the Markdown files directly inside dir, sorted by ID.
func (a *Assembler) readArticles(dir string) ([]Article, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var articles []Article
	for _, entry := range entries {
		if entry.IsDir() || !IsMarkdownFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, ferrors.WrapError(fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, path, err), ferrors.CategoryDocs, "read article").
				Fatal().
				WithContext("path", path).
				Build()
		}
		article, err := a.parser.Parse(entry.Name(), content)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryDocs, "parse article").
				Fatal().
				WithContext("path", path).
				Build()
		}
		articles = append(articles, article)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].ID != articles[j].ID {
			return articles[i].ID < articles[j].ID
		}
		return articles[i].Source < articles[j].Source
	})
	return articles, nil
}

func (a *Assembler) excluded(path string) bool {
	_, ok := a.exclude[filepath.Clean(path)]
	return ok
}

// checkStubs rejects page lists where two pages share an output path. The
// index page is written at the output root, so only nested stubs compete.
func checkStubs(pages []Page) error {
	seen := make(map[string]string, len(pages))
	for _, p := range pages {
		if p.IsIndex {
			continue
		}
		if prev, ok := seen[p.Stub]; ok {
			return ferrors.WrapError(fmt.Errorf("%w: %q used by %s and %s", derrors.ErrStubCollision, p.Stub, prev, p.Dir), ferrors.CategoryDocs, "duplicate page stub").
				Fatal().
				WithContext("stub", p.Stub).
				Build()
		}
		seen[p.Stub] = p.Dir
	}
	return nil
}

// IsMarkdownFile reports whether name carries a Markdown extension.
func IsMarkdownFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return true
	}
	return false
}
