package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Format identifies how a document declares its metadata.
type Format string

const (
	FormatNone   Format = ""
	FormatYAML   Format = "yaml"   // --- delimited YAML
	FormatTOML   Format = "toml"   // +++ delimited TOML
	FormatHeader Format = "header" // bare "Key: value" lines ended by a blank line
)

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Style captures the newline shape of a document.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates a delimited front matter block (`---` for YAML, `+++` for
// TOML) from the Markdown body.
//
// Documents without an opening delimiter return FormatNone and the full input
// as body. The returned front matter excludes the delimiter lines.
func Split(content []byte) (fm []byte, body []byte, format Format, err error) {
	style := DetectStyle(content)
	nl := style.Newline

	var delim string
	switch {
	case bytes.HasPrefix(content, []byte("---"+nl)):
		delim, format = "---", FormatYAML
	case bytes.HasPrefix(content, []byte("+++"+nl)):
		delim, format = "+++", FormatTOML
	default:
		return nil, content, FormatNone, nil
	}

	start := len(delim) + len(nl)
	rest := content[start:]

	// Empty block: the closing delimiter immediately follows the opening one.
	if bytes.HasPrefix(rest, []byte(delim+nl)) {
		return []byte{}, rest[len(delim)+len(nl):], format, nil
	}
	if bytes.Equal(rest, []byte(delim)) {
		return []byte{}, []byte{}, format, nil
	}

	closeSeq := []byte(nl + delim + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], format, nil
	}
	// Closing delimiter on the last line without a trailing newline.
	if bytes.HasSuffix(rest, []byte(nl+delim)) {
		return rest[:len(rest)-len(delim)], []byte{}, format, nil
	}
	return nil, nil, FormatNone, ErrMissingClosingDelimiter
}

// ParseTOML decodes a TOML front matter block.
func ParseTOML(fm []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(fm)) == 0 {
		return fields, nil
	}
	if err := toml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

var (
	headerKeyRe  = regexp.MustCompile(`^ {0,3}([A-Za-z0-9_-]+):\s*(.*)$`)
	headerMoreRe = regexp.MustCompile(`^ {4,}(.*)$`)
	headerEndRe  = regexp.MustCompile(`^(-{3}|\.{3})(\s.*)?$`)
)

// SplitHeader extracts bare "Key: value" metadata lines from the top of a
// document. Keys are lowercased, indented lines continue the previous key and
// a blank line (or a `---`/`...` line) ends the header. The first line that
// is neither ends the header and stays in the body.
//
// ok is false when the document does not start with a header line.
func SplitHeader(content []byte) (fields map[string][]string, body []byte, ok bool) {
	lines := strings.SplitAfter(string(content), "\n")
	fields = map[string][]string{}
	key := ""
	consumed := 0

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")
		if headerEndRe.MatchString(line) && len(fields) > 0 {
			consumed++
			break
		}
		if strings.TrimSpace(line) == "" {
			if len(fields) > 0 {
				consumed++
			}
			break
		}
		if m := headerKeyRe.FindStringSubmatch(line); m != nil {
			key = strings.ToLower(m[1])
			fields[key] = append(fields[key], strings.TrimSpace(m[2]))
			consumed++
			continue
		}
		if m := headerMoreRe.FindStringSubmatch(line); m != nil && key != "" {
			fields[key] = append(fields[key], strings.TrimSpace(m[1]))
			consumed++
			continue
		}
		break
	}

	if len(fields) == 0 {
		return nil, content, false
	}
	return fields, []byte(strings.Join(lines[consumed:], "")), true
}

// HeaderFields parses a delimited block as "Key: value" lines, the lenient
// format accepted when the block is not valid YAML. Unrecognised lines are
// skipped.
func HeaderFields(block []byte) map[string][]string {
	fields := map[string][]string{}
	key := ""
	for _, raw := range strings.Split(string(block), "\n") {
		line := strings.TrimRight(raw, "\r")
		if m := headerKeyRe.FindStringSubmatch(line); m != nil {
			key = strings.ToLower(m[1])
			fields[key] = append(fields[key], strings.TrimSpace(m[2]))
			continue
		}
		if m := headerMoreRe.FindStringSubmatch(line); m != nil && key != "" {
			fields[key] = append(fields[key], strings.TrimSpace(m[1]))
		}
	}
	return fields
}

// Normalize converts decoded front matter into the string-list mapping used
// for article metadata. Keys are lowercased; scalars become one-element lists,
// sequences one element per item, dates are rendered as YYYY-MM-DD (or RFC
// 3339 when they carry a time of day).
func Normalize(fields map[string]any) map[string][]string {
	out := make(map[string][]string, len(fields))
	for k, v := range fields {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" || v == nil {
			continue
		}
		switch val := v.(type) {
		case []any:
			for _, item := range val {
				if item != nil {
					out[key] = append(out[key], stringify(item))
				}
			}
		case []string:
			out[key] = append(out[key], val...)
		default:
			out[key] = append(out[key], stringify(val))
		}
	}
	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// DetectStyle reports the newline convention of content.
func DetectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
