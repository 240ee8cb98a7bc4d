package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")

	lc := GetContext(ctx)
	if lc.BuildID != "build-123" {
		t.Errorf("expected build-123, got %s", lc.BuildID)
	}
}

func TestWithStepKeepsBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")
	ctx = WithStep(ctx, "Restoring files from buildpack cache")
	ctx = WithInstaller(ctx, "libunwind")

	lc := GetContext(ctx)
	if lc.BuildID != "build-123" || lc.Step != "Restoring files from buildpack cache" || lc.Installer != "libunwind" {
		t.Errorf("unexpected log context %+v", lc)
	}
}

func TestContextAttrsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	ctx := WithStep(WithBuildID(context.Background(), "b-1"), "compile")
	InfoContext(ctx, "running", slog.String("extra", "x"))
	DebugContext(context.Background(), "bare")

	out := buf.String()
	for _, want := range []string{"build.id=b-1", "step=compile", "extra=x", "msg=bare"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
