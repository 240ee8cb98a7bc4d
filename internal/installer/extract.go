package installer

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
)

// Extract unpacks the .tar.gz archive into dest, creating dest if needed. Entries that
// would land outside dest are rejected.
func Extract(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return extractError(archive, err)
	}
	defer func() {
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return extractError(archive, err)
	}
	defer func() {
		_ = gz.Close()
	}()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return extractError(archive, err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return extractError(archive, err)
		}
		if err := extractEntry(tr, hdr, dest); err != nil {
			return extractError(archive, err)
		}
	}
}

func extractEntry(r io.Reader, hdr *tar.Header, dest string) error {
	target, err := within(dest, hdr.Name)
	if err != nil {
		return err
	}
	mode := os.FileMode(hdr.Mode).Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, mode|0o700)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		_ = os.Remove(target)
		// #nosec G110 -- archives come from the buildpack's own dependency catalog
		return writeFile(target, r, mode)
	case tar.TypeSymlink:
		linkTarget := hdr.Linkname
		if !filepath.IsAbs(linkTarget) {
			linkTarget = filepath.Join(filepath.Dir(target), linkTarget)
		}
		if _, err := within(dest, mustRel(dest, linkTarget)); err != nil || filepath.IsAbs(hdr.Linkname) {
			return fmt.Errorf("symlink %s escapes destination", hdr.Name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		_ = os.Remove(target)
		return os.Symlink(hdr.Linkname, target)
	case tar.TypeLink:
		source, err := within(dest, hdr.Linkname)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		_ = os.Remove(target)
		return os.Link(source, target)
	default:
		return nil
	}
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Chmod(target, mode)
}

// within joins name onto dest and fails when the result is outside dest.
func within(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if target != filepath.Clean(dest) && !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %s escapes destination", name)
	}
	return target, nil
}

func mustRel(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}

func extractError(archive string, err error) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryInstall, "extract "+filepath.Base(archive)).
		WithContext("archive", archive).
		Build()
}
