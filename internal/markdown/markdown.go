package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/picopage/internal/frontmatter"
)

// Result is the outcome of converting one Markdown document.
type Result struct {
	HTML        []byte
	Meta        map[string][]string // lowercased keys, values in declaration order
	Format      frontmatter.Format
	FrontMatter []byte // raw metadata block, delimiters excluded
	Body        []byte // Markdown body without metadata
	Warnings    []error
}

// First returns the first value recorded for key.
func (r Result) First(key string) (string, bool) {
	vals := r.Meta[key]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Converter turns Markdown into HTML plus metadata.
//
// It holds only immutable goldmark instances; every Convert call uses a fresh
// parser context, so metadata never carries over between documents and a
// single Converter may be shared freely.
type Converter struct {
	withMeta goldmark.Markdown
	plain    goldmark.Markdown
}

// NewConverter builds a Converter with tables, footnotes, definition lists,
// strikethrough, heading attributes, auto heading IDs and raw HTML enabled.
func NewConverter() *Converter {
	return &Converter{
		withMeta: newMarkdown(meta.Meta),
		plain:    newMarkdown(),
	}
}

func newMarkdown(extra ...goldmark.Extender) goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.Footnote,
		extension.DefinitionList,
	}
	return goldmark.New(
		goldmark.WithExtensions(append(exts, extra...)...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // raw HTML in articles is passed through
		),
	)
}

// Convert renders src. Problems with the metadata block are reported as
// Warnings and never prevent the body from being converted.
func (c *Converter) Convert(src []byte) (Result, error) {
	res := Result{Meta: map[string][]string{}}

	fm, body, format, err := frontmatter.Split(src)
	if err != nil {
		res.Warnings = append(res.Warnings, err)
		fm, body, format = nil, src, frontmatter.FormatNone
	}

	var buf bytes.Buffer
	switch format {
	case frontmatter.FormatYAML:
		ctx := parser.NewContext()
		if err := c.withMeta.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
			return Result{}, fmt.Errorf("converting markdown: %w", err)
		}
		fields, err := meta.TryGet(ctx)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("yaml front matter: %w", err))
			res.Meta = frontmatter.HeaderFields(fm)
			// goldmark-meta leaves the broken block in the document; render the body alone.
			buf.Reset()
			if err := c.convertPlain(body, &buf); err != nil {
				return Result{}, err
			}
		} else {
			res.Meta = frontmatter.Normalize(fields)
		}

	case frontmatter.FormatTOML:
		fields, err := frontmatter.ParseTOML(fm)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("toml front matter: %w", err))
		} else {
			res.Meta = frontmatter.Normalize(fields)
		}
		if err := c.convertPlain(body, &buf); err != nil {
			return Result{}, err
		}

	default:
		if fields, rest, ok := frontmatter.SplitHeader(body); ok {
			format = frontmatter.FormatHeader
			fm = body[:len(body)-len(rest)]
			body = rest
			res.Meta = fields
		}
		if err := c.convertPlain(body, &buf); err != nil {
			return Result{}, err
		}
	}

	res.HTML = buf.Bytes()
	res.Format = format
	res.FrontMatter = fm
	res.Body = body
	return res, nil
}

func (c *Converter) convertPlain(body []byte, buf *bytes.Buffer) error {
	if err := c.plain.Convert(body, buf, parser.WithContext(parser.NewContext())); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	return nil
}
