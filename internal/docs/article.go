package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/inful/mdfp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	derrors "git.home.luguber.info/inful/picopage/internal/docs/errors"
	"git.home.luguber.info/inful/picopage/internal/logfields"
	"git.home.luguber.info/inful/picopage/internal/markdown"
)

// summaryLimit caps Article.Summary, in runes.
const summaryLimit = 160

// ArticleParser turns Markdown sources into Articles.
type ArticleParser struct {
	conv *markdown.Converter
}

// NewArticleParser wraps conv. A nil conv gets a default Converter.
func NewArticleParser(conv *markdown.Converter) *ArticleParser {
	if conv == nil {
		conv = markdown.NewConverter()
	}
	return &ArticleParser{conv: conv}
}

// Parse converts text, read from filename, into an Article. Metadata problems
// are logged and fall back to defaults; only a failed conversion is an error.
func (p *ArticleParser) Parse(filename string, text []byte) (Article, error) {
	res, err := p.conv.Convert(text)
	if err != nil {
		return Article{}, fmt.Errorf("%w: %s: %w", derrors.ErrConvertFailed, filename, err)
	}
	for _, w := range res.Warnings {
		slog.Warn("Ignoring article metadata", logfields.File(filename), logfields.Error(w))
	}

	fm := strings.TrimRight(string(res.FrontMatter), "\r\n")
	return Article{
		ID:          NormalizeIdentifier(filename),
		Source:      filepath.Base(filename),
		Title:       metaOr(res, "title", DefaultTitle),
		Created:     metaOr(res, "created", DefaultCreated),
		Updated:     metaOr(res, "updated", DefaultUpdated),
		Content:     template.HTML(res.HTML), //nolint:gosec // converter output is trusted site content
		Summary:     Summarize(res.HTML),
		Fingerprint: mdfp.CalculateFingerprintFromParts(fm, string(res.Body)),
	}, nil
}

func metaOr(res markdown.Result, key, def string) string {
	if v, ok := res.First(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// NormalizeIdentifier derives an article identifier from a file name: the
// extension is dropped, the name is NFC-normalized and lowercased, and all
// whitespace is removed. "My Post.md" becomes "mypost".
func NormalizeIdentifier(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = norm.NFC.String(name)
	name = cases.Lower(language.Und).String(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

// Summarize returns the whitespace-collapsed text of the first paragraph in
// rendered HTML, truncated to a short teaser.
func Summarize(rendered []byte) string {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return ""
	}
	p := findFirst(doc, atom.P)
	if p == nil {
		return ""
	}
	var sb strings.Builder
	collectText(p, &sb)
	text := strings.Join(strings.Fields(sb.String()), " ")

	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}
	return strings.TrimSpace(string(runes[:summaryLimit])) + "…"
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
