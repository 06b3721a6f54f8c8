// Package themes ships the built-in page template and stylesheets.
//
// Both sets can be shadowed from disk: a file present in the override
// directory wins over the embedded file of the same name.
package themes

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// PageTemplate is the template rendered once per page.
const PageTemplate = "page.html"

//go:embed assets/templates/*.html
var embeddedTemplates embed.FS

//go:embed assets/styles/*.css
var embeddedStyles embed.FS

// Templates returns the page templates, with files in overrideDir shadowing
// the embedded defaults. An empty overrideDir yields the embedded set only.
func Templates(overrideDir string) fs.FS {
	return layered(mustSub(embeddedTemplates, "assets/templates"), overrideDir)
}

// Styles returns the theme stylesheets, with files in overrideDir shadowing
// the embedded ones.
func Styles(overrideDir string) fs.FS {
	return layered(mustSub(embeddedStyles, "assets/styles"), overrideDir)
}

// Names lists the stylesheet themes available in styles, without extension.
func Names(styles fs.FS) []string {
	entries, err := fs.ReadDir(styles, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".css") {
			names = append(names, strings.TrimSuffix(e.Name(), ".css"))
		}
	}
	return names
}

// Has reports whether fsys contains the regular file name.
func Has(fsys fs.FS, name string) bool {
	fi, err := fs.Stat(fsys, name)
	return err == nil && fi.Mode().IsRegular()
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("themes: embedded asset directory missing: " + dir)
	}
	return sub
}

func layered(base fs.FS, overrideDir string) fs.FS {
	if overrideDir == "" {
		return base
	}
	return overlayFS{upper: os.DirFS(overrideDir), lower: base}
}

// overlayFS resolves names against upper first and falls back to lower.
type overlayFS struct {
	upper fs.FS
	lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.lower.Open(name)
}

// ReadDir merges both layers; upper entries shadow lower ones.
func (o overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	merged := map[string]fs.DirEntry{}
	lower, lerr := fs.ReadDir(o.lower, name)
	for _, e := range lower {
		merged[e.Name()] = e
	}
	upper, uerr := fs.ReadDir(o.upper, name)
	for _, e := range upper {
		merged[e.Name()] = e
	}
	if lerr != nil && uerr != nil {
		return nil, lerr
	}
	out := make([]fs.DirEntry, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}
