// Package render writes the HTML pages of a site through html/template.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/picopage/internal/docs"
	"git.home.luguber.info/inful/picopage/internal/themes"
)

// Registry holds the templates parsed for one run.
type Registry struct {
	tmpl *template.Template
}

// NewRegistry parses the page template from fsys. Templates are parsed once;
// a missing key in the bindings is an execution error.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	tmpl, err := template.New(themes.PageTemplate).
		Funcs(funcMap()).
		Option("missingkey=error").
		ParseFS(fsys, themes.PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Registry{tmpl: tmpl}, nil
}

// Execute renders the named template with data.
func (r *Registry) Execute(name string, data any) ([]byte, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %q not registered", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"pageURL":    PageURL,
		"pathEscape": url.PathEscape,
	}
}

// OutputPath is the slash-separated path of p's HTML file, relative to the
// output root.
func OutputPath(p docs.Page) string {
	if p.IsIndex {
		return "index.html"
	}
	return p.Stub + "/index.html"
}

// RootPrefix is the relative link from p's HTML file to the output root.
func RootPrefix(p docs.Page) string {
	depth := strings.Count(OutputPath(p), "/")
	if depth == 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

// PageURL is the relative link from page from to page to.
func PageURL(from, to docs.Page) string {
	if to.IsIndex {
		return RootPrefix(from)
	}
	return RootPrefix(from) + url.PathEscape(to.Stub) + "/"
}
