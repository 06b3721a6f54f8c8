package frontmatter

import (
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, format, err := Split(input)
	require.NoError(t, err)
	require.Equal(t, FormatNone, format)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, format, err := Split([]byte("---\nkey: value\n---\n# Title\n"))
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_TOMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, format, err := Split([]byte("+++\ntitle = \"Hi\"\n+++\nBody\n"))
	require.NoError(t, err)
	require.Equal(t, FormatTOML, format)
	require.Equal(t, []byte("title = \"Hi\"\n"), fm)
	require.Equal(t, []byte("Body\n"), body)
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, format, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock(t *testing.T) {
	fm, body, format, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, _, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.Equal(t, []byte("title: x\n"), fm)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, format, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.Equal(t, FormatNone, format)
}

func TestParseTOML(t *testing.T) {
	fields, err := ParseTOML([]byte("title = \"Hello\"\ncreated = 2021-03-04\ntags = [\"a\", \"b\"]\n"))
	require.NoError(t, err)
	require.Equal(t, "Hello", fields["title"])
	require.IsType(t, toml.LocalDate{}, fields["created"])

	meta := Normalize(fields)
	require.Equal(t, []string{"Hello"}, meta["title"])
	require.Equal(t, []string{"2021-03-04"}, meta["created"])
	require.Equal(t, []string{"a", "b"}, meta["tags"])
}

func TestParseTOML_EmptyAndInvalid(t *testing.T) {
	fields, err := ParseTOML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)

	_, err = ParseTOML([]byte("title = "))
	require.Error(t, err)
}

func TestSplitHeader(t *testing.T) {
	fields, body, ok := SplitHeader([]byte("Title: Hello\nCreated: 2020-01-01\n\n# Body\n"))
	require.True(t, ok)
	require.Equal(t, []string{"Hello"}, fields["title"])
	require.Equal(t, []string{"2020-01-01"}, fields["created"])
	require.Equal(t, "# Body\n", string(body))
}

func TestSplitHeader_ContinuationLines(t *testing.T) {
	fields, body, ok := SplitHeader([]byte("Title: First\n    Second\nplain text\n"))
	require.True(t, ok)
	require.Equal(t, []string{"First", "Second"}, fields["title"])
	require.Equal(t, "plain text\n", string(body))
}

func TestSplitHeader_NoHeader(t *testing.T) {
	input := []byte("# Hi\n\nText: not metadata\n")
	fields, body, ok := SplitHeader(input)
	require.False(t, ok)
	require.Nil(t, fields)
	require.Equal(t, input, body)
}

func TestHeaderFields_SkipsUnknownLines(t *testing.T) {
	fields := HeaderFields([]byte("title: Hello: World\n!! junk\ncreated: today\n"))
	require.Equal(t, []string{"Hello: World"}, fields["title"])
	require.Equal(t, []string{"today"}, fields["created"])
}

func TestNormalize(t *testing.T) {
	meta := Normalize(map[string]any{
		"Title":   "  Spaced  ",
		"created": time.Date(2022, 5, 6, 0, 0, 0, 0, time.UTC),
		"updated": time.Date(2022, 5, 6, 10, 30, 0, 0, time.UTC),
		"count":   3,
		"list":    []any{"x", 1, nil},
		"empty":   nil,
	})

	require.Equal(t, []string{"Spaced"}, meta["title"])
	require.Equal(t, []string{"2022-05-06"}, meta["created"])
	require.Equal(t, []string{"2022-05-06T10:30:00Z"}, meta["updated"])
	require.Equal(t, []string{"3"}, meta["count"])
	require.Equal(t, []string{"x", "1"}, meta["list"])
	require.NotContains(t, meta, "empty")
}

func TestDetectStyle(t *testing.T) {
	require.Equal(t, "\r\n", DetectStyle([]byte("a\r\nb")).Newline)
	require.Equal(t, "\n", DetectStyle([]byte("a\nb")).Newline)
	require.True(t, DetectStyle([]byte("a\n")).HasTrailingNewline)
	require.False(t, DetectStyle(nil).HasTrailingNewline)
}
