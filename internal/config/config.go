// Package config builds the buildpack configuration from the staging directories and an
// explicit environment snapshot.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
)

// Environment variables understood by the buildpack.
const (
	EnvCacheNuGetPackages     = "CACHE_NUGET_PACKAGES"
	EnvLogLevel               = "BP_LOG_LEVEL"
	EnvMetricsFile            = "BP_METRICS_FILE"
	EnvScratchDir             = "BP_SCRATCH_DIR"
	EnvDownloadRetries        = "BP_DOWNLOAD_RETRIES"
	EnvDownloadBackoff        = "BP_DOWNLOAD_BACKOFF"
	EnvDownloadBackoffInitial = "BP_DOWNLOAD_BACKOFF_INITIAL"
	EnvDownloadBackoffMax     = "BP_DOWNLOAD_BACKOFF_MAX"
)

// cacheDisabledValue is the only value of CACHE_NUGET_PACKAGES that disables caching.
const cacheDisabledValue = "false"

const appName = "aspnetcore-buildpack"

// Config is the resolved configuration of one buildpack invocation.
type Config struct {
	BuildDir     string
	CacheDir     string
	BuildpackDir string

	// ScratchDir is the parent of the directory application source is moved to
	// during compilation.
	ScratchDir string

	// CacheNuGetPackages is false only when CACHE_NUGET_PACKAGES=false.
	CacheNuGetPackages bool

	LogLevel    LogLevel
	MetricsFile string

	Download DownloadConfig
}

// DownloadConfig controls retries of dependency downloads.
type DownloadConfig struct {
	Retries int
	Backoff RetryBackoffMode
	Initial time.Duration
	Max     time.Duration
}

// Dirs are the directories the staging system hands to the buildpack.
type Dirs struct {
	Build     string
	Cache     string
	Buildpack string
}

// DefaultCacheDir is used when the staging system does not provide a cache directory.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// New resolves a Config from dirs and env. Invalid numeric or duration values fall back
// to defaults.
func New(dirs Dirs, env Environment) (*Config, error) {
	cfg := &Config{
		BuildDir:           dirs.Build,
		CacheDir:           dirs.Cache,
		BuildpackDir:       dirs.Buildpack,
		CacheNuGetPackages: true,
		LogLevel:           LogLevelInfo,
		Download: DownloadConfig{
			Retries: 2,
			Backoff: RetryBackoffLinear,
			Initial: time.Second,
			Max:     30 * time.Second,
		},
	}

	if v, ok := env.Lookup(EnvCacheNuGetPackages); ok && v == cacheDisabledValue {
		cfg.CacheNuGetPackages = false
	}
	if v, ok := env.Lookup(EnvLogLevel); ok {
		cfg.LogLevel = NormalizeLogLevel(v)
	}
	cfg.MetricsFile = env[EnvMetricsFile]
	cfg.ScratchDir = env[EnvScratchDir]

	if v, ok := env.Lookup(EnvDownloadRetries); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Download.Retries = n
		}
	}
	if v, ok := env.Lookup(EnvDownloadBackoff); ok {
		if mode, err := ParseRetryBackoff(v); err == nil {
			cfg.Download.Backoff = mode
		} else {
			slog.Warn("Ignoring invalid download backoff", slog.String("env", EnvDownloadBackoff), logfields.Error(err))
		}
	}
	if v, ok := env.Lookup(EnvDownloadBackoffInitial); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Download.Initial = d
		}
	}
	if v, ok := env.Lookup(EnvDownloadBackoffMax); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Download.Max = d
		}
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir()
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the build directory exists and the cache directory is usable.
func (c *Config) Validate() error {
	if c.BuildDir == "" {
		return foundationerrors.ConfigError("build directory is required").Build()
	}
	info, err := os.Stat(c.BuildDir)
	if err != nil {
		return foundationerrors.ConfigError("build directory is not accessible").
			WithCause(err).
			WithContext("path", c.BuildDir).
			Build()
	}
	if !info.IsDir() {
		return foundationerrors.ConfigError("build directory is not a directory").
			WithContext("path", c.BuildDir).
			Build()
	}
	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil {
		return foundationerrors.ConfigError("cache directory cannot be created").
			WithCause(err).
			WithContext("path", c.CacheDir).
			Build()
	}
	return nil
}
