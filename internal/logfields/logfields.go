package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPostsDir   = "posts_dir"
	KeyTagDir     = "tag_dir"
	KeyPost       = "post"
	KeyTag        = "tag"
	KeyPath       = "path"
	KeyExtractor  = "extractor"
	KeyCount      = "count"
	KeyReason     = "reason"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyBuildID    = "build_id"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PostsDir(p string) slog.Attr     { return slog.String(KeyPostsDir, p) }
func TagDir(p string) slog.Attr       { return slog.String(KeyTagDir, p) }
func Post(p string) slog.Attr         { return slog.String(KeyPost, p) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Extractor(e string) slog.Attr    { return slog.String(KeyExtractor, e) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
