package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStep       = "step"
	KeyInstaller  = "installer"
	KeyDependency = "dependency"
	KeyVersion    = "version"
	KeyProject    = "project"
	KeyPath       = "path"
	KeyCacheKey   = "cache_key"
	KeyCommand    = "command"
	KeyDir        = "dir"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Step(name string) slog.Attr        { return slog.String(KeyStep, name) }
func Installer(name string) slog.Attr   { return slog.String(KeyInstaller, name) }
func Dependency(name string) slog.Attr  { return slog.String(KeyDependency, name) }
func Version(v string) slog.Attr        { return slog.String(KeyVersion, v) }
func Project(p string) slog.Attr        { return slog.String(KeyProject, p) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func CacheKey(k string) slog.Attr       { return slog.String(KeyCacheKey, k) }
func Command(c string) slog.Attr        { return slog.String(KeyCommand, c) }
func Dir(d string) slog.Attr            { return slog.String(KeyDir, d) }
func Attempt(n int) slog.Attr           { return slog.Int(KeyAttempt, n) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
