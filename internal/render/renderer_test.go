package render

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/picopage/internal/docs"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/site"
	"git.home.luguber.info/inful/picopage/internal/themes"
)

func sampleSite() *site.Site {
	return &site.Site{
		Title:      "Blog",
		Author:     "A",
		Theme:      "default",
		Stylesheet: "default.css",
		Pages: []docs.Page{
			{
				Name: "blog", Stub: docs.IndexStub, IsIndex: true,
				Articles: []docs.Article{{
					ID: "post", Title: "Hello", Created: "2024-01-02", Updated: docs.DefaultUpdated,
					Content: "<h1>Hi</h1>\n<p>Welcome text.</p>", Summary: "Welcome text.",
				}},
			},
			{
				Name: "My Notes", Stub: "my notes", Position: 100,
				Articles: []docs.Article{{ID: "n", Title: docs.DefaultTitle, Created: "Never", Updated: "2024-03-01", Content: "<p>note</p>"}},
			},
		},
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	reg, err := NewRegistry(themes.Templates(""))
	require.NoError(t, err)
	return NewRenderer(reg, themes.Styles(""))
}

func TestOutputPaths(t *testing.T) {
	index := docs.Page{Stub: docs.IndexStub, IsIndex: true}
	notes := docs.Page{Stub: "notes"}
	spaced := docs.Page{Stub: "my notes"}

	require.Equal(t, "index.html", OutputPath(index))
	require.Equal(t, "notes/index.html", OutputPath(notes))
	require.Equal(t, "./", RootPrefix(index))
	require.Equal(t, "../", RootPrefix(notes))
	require.Equal(t, "./notes/", PageURL(index, notes))
	require.Equal(t, "../", PageURL(notes, index))
	require.Equal(t, "../my%20notes/", PageURL(notes, spaced))
}

func TestRender_WritesPagesAndStylesheet(t *testing.T) {
	out := t.TempDir()
	n, err := newTestRenderer(t).Render(sampleSite(), out)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	html := string(index)
	require.Contains(t, html, "<title>blog | Blog</title>")
	require.Contains(t, html, "<h1>Hi</h1>")
	require.Contains(t, html, "<h2>Hello</h2>")
	require.Contains(t, html, `href="./default.css"`)
	require.Contains(t, html, `href="./my%20notes/"`)
	require.Contains(t, html, `content="Welcome text."`)
	require.NotContains(t, html, "updated")

	notes, err := os.ReadFile(filepath.Join(out, "my notes", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(notes), "<p>note</p>")
	require.Contains(t, string(notes), "updated 2024-03-01")
	require.Contains(t, string(notes), `href="../default.css"`)

	css, err := os.ReadFile(filepath.Join(out, "default.css"))
	require.NoError(t, err)
	require.NotEmpty(t, css)
}

func TestRender_IsDeterministic(t *testing.T) {
	r := newTestRenderer(t)
	a, b := t.TempDir(), t.TempDir()
	_, err := r.Render(sampleSite(), a)
	require.NoError(t, err)
	_, err = r.Render(sampleSite(), b)
	require.NoError(t, err)

	for _, rel := range []string{"index.html", "my notes/index.html", "default.css"} {
		x, err := os.ReadFile(filepath.Join(a, rel))
		require.NoError(t, err)
		y, err := os.ReadFile(filepath.Join(b, rel))
		require.NoError(t, err)
		require.Equal(t, x, y, rel)
	}
}

func TestRender_CustomTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		themes.PageTemplate: {Data: []byte(`{{ .SiteTitle }}/{{ .PageTitle }}/{{ .Theme }}/{{ len .Pages }}`)},
	}
	reg, err := NewRegistry(fsys)
	require.NoError(t, err)

	out := t.TempDir()
	_, err = NewRenderer(reg, themes.Styles("")).Render(sampleSite(), out)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Equal(t, "Blog/blog/default.css/2", string(data))
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(fstest.MapFS{})
	require.Error(t, err)

	_, err = NewRegistry(fstest.MapFS{themes.PageTemplate: {Data: []byte("{{ .Broken ")}})
	require.Error(t, err)
}

func TestRender_TemplateErrorIsClassified(t *testing.T) {
	reg, err := NewRegistry(fstest.MapFS{themes.PageTemplate: {Data: []byte("{{ .NoSuchField }}")}})
	require.NoError(t, err)

	_, err = NewRenderer(reg, themes.Styles("")).Render(sampleSite(), t.TempDir())
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryTemplate, ferrors.GetCategory(err))
}

func TestRender_MissingStylesheet(t *testing.T) {
	s := sampleSite()
	s.Stylesheet = "neon.css"
	_, err := newTestRenderer(t).Render(s, t.TempDir())
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))
}
