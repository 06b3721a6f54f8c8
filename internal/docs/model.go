package docs

import "html/template"

// Metadata defaults for articles that do not declare a key.
const (
	DefaultTitle   = "No Title"
	DefaultCreated = "Never"
	DefaultUpdated = "Never"
)

// IndexStub is the stub of the root page.
const IndexStub = "index"

// DefaultPosition is the navigation rank of pages without a configured position.
const DefaultPosition = 100

// Article is one converted Markdown document. Values are built by
// ArticleParser and treated as read-only afterwards.
type Article struct {
	ID          string        // normalized identifier derived from the file name
	Source      string        // file name as found on disk
	Title       string        // metadata "title" or DefaultTitle
	Created     string        // metadata "created" or DefaultCreated
	Updated     string        // metadata "updated" or DefaultUpdated
	Content     template.HTML // rendered body
	Summary     string        // plain text of the first paragraph
	Fingerprint string        // content fingerprint of metadata + body
}

// HasUpdate reports whether the article declares an update time.
func (a Article) HasUpdate() bool {
	return a.Updated != DefaultUpdated
}

// Page is one navigable unit: the source root or a nested directory that
// contains at least one Markdown file.
type Page struct {
	Name     string    // display name
	Position int       // navigation rank, ascending
	Stub     string    // output path segment
	Articles []Article // sorted by ID
	IsIndex  bool      // true only for the root page
	Dir      string    // source directory relative to the root ("." for the index)
}

// CountArticles sums the articles over pages.
func CountArticles(pages []Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Articles)
	}
	return n
}
