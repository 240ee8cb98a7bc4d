package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Step", KeyStep, "Saving to buildpack cache", Step("Saving to buildpack cache")},
		{"Installer", KeyInstaller, "libunwind", Installer("libunwind")},
		{"Dependency", KeyDependency, "dotnet.tar.gz", Dependency("dotnet.tar.gz")},
		{"Version", KeyVersion, "1.0.0", Version("1.0.0")},
		{"Project", KeyProject, "src/app", Project("src/app")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"CacheKey", KeyCacheKey, ".dotnet", CacheKey(".dotnet")},
		{"Command", KeyCommand, "dotnet restore", Command("dotnet restore")},
		{"Dir", KeyDir, "/tmp/src", Dir("/tmp/src")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := Attempt(3); a.Key != KeyAttempt || a.Value.Int64() != 3 {
		t.Fatalf("unexpected attempt attr %v", a)
	}
	if a := DurationMS(12.5); a.Value.Float64() != 12.5 {
		t.Fatalf("unexpected duration attr %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("nil error should log empty string, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("unexpected error attr %v", a)
	}
}
