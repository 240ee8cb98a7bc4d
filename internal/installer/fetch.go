package installer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/metrics"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/retry"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
)

// Fetcher downloads a dependency archive by file name and returns its local path.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// DownloadScript is the buildpack helper that downloads dependencies listed in the
// manifest, relative to the buildpack directory.
const DownloadScript = "compile-extensions/bin/download_dependency"

// ShellFetcher downloads through the buildpack's download_dependency script.
type ShellFetcher struct {
	BuildpackDir string
	// DownloadDir receives archives; empty means os.TempDir().
	DownloadDir string
	Shell       CommandRunner
	Policy      retry.Policy
	Recorder    metrics.Recorder
	// Out receives the script output; nil discards it.
	Out out.Printer
}

// Fetch runs the download script, retrying failures per Policy.
func (f *ShellFetcher) Fetch(ctx context.Context, name string) (string, error) {
	dir := f.DownloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create download directory").Build()
	}
	recorder := f.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	p := f.Out
	if p == nil {
		p = out.Discard
	}

	cmd := shell.Command{
		Line: fmt.Sprintf("%s %s %s", filepath.Join(f.BuildpackDir, DownloadScript), name, dir),
		Dir:  dir,
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = f.Shell.Run(ctx, cmd, p)
		if err == nil {
			return filepath.Join(dir, name), nil
		}
		if attempt >= f.Policy.MaxRetries || ctx.Err() != nil {
			break
		}
		recorder.IncDownloadRetry(name)
		observability.WarnContext(ctx, "Download failed, retrying",
			logfields.Dependency(name),
			logfields.Attempt(attempt+1),
			logfields.Error(err))
		if waitErr := f.Policy.Wait(ctx, attempt+1); waitErr != nil {
			err = waitErr
			break
		}
	}

	slog.Debug("Download failed", logfields.Dependency(name), logfields.Error(err))
	return "", foundationerrors.WrapError(err, foundationerrors.CategoryInstall, "download "+name).
		Retryable().
		WithContext("dependency", name).
		Build()
}
