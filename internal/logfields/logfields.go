package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeyStub       = "stub"
	KeyArticle    = "article"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyTheme      = "theme"
	KeyCount      = "count"
	KeyError      = "error"
)

// Helpers return slog.Attr values so callers can compose them freely.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Page(name string) slog.Attr      { return slog.String(KeyPage, name) }
func Stub(s string) slog.Attr         { return slog.String(KeyStub, s) }
func Article(id string) slog.Attr     { return slog.String(KeyArticle, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Theme(t string) slog.Attr        { return slog.String(KeyTheme, t) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
