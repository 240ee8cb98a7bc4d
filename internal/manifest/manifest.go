// Package manifest reads the buildpack's manifest.yml: the catalog of dependency
// versions the buildpack can install and the default version of each.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
)

// FileName is the manifest file at the buildpack root.
const FileName = "manifest.yml"

// Manifest is the parsed manifest.yml.
type Manifest struct {
	Language        string           `yaml:"language"`
	DefaultVersions []DefaultVersion `yaml:"default_versions"`
	Dependencies    []Dependency     `yaml:"dependencies"`
}

// DefaultVersion names the version installed when an application does not ask for one.
type DefaultVersion struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Dependency is one downloadable dependency version.
type Dependency struct {
	Name     string   `yaml:"name"`
	Version  string   `yaml:"version"`
	URI      string   `yaml:"uri"`
	SHA256   string   `yaml:"sha256"`
	CFStacks []string `yaml:"cf_stacks,omitempty"`
}

// FileName returns the archive name the dependency downloads to.
func (d Dependency) FileName() string {
	if d.URI == "" {
		return ""
	}
	return path.Base(d.URI)
}

// Load reads and parses the manifest in buildpackDir.
func Load(buildpackDir string) (*Manifest, error) {
	p := filepath.Join(buildpackDir, FileName)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "read buildpack manifest").
			WithContext("path", p).
			Build()
	}
	return Parse(data)
}

// Parse parses manifest.yml content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "parse buildpack manifest").Build()
	}
	return &m, nil
}

// DefaultVersion returns the default version of name.
func (m *Manifest) DefaultVersion(name string) (string, error) {
	for _, dv := range m.DefaultVersions {
		if dv.Name == name {
			return dv.Version, nil
		}
	}
	return "", foundationerrors.NotFoundError("no default version for " + name).Build()
}

// Versions lists the catalogued versions of name in manifest order.
func (m *Manifest) Versions(name string) []string {
	var versions []string
	for _, d := range m.Dependencies {
		if d.Name == name {
			versions = append(versions, d.Version)
		}
	}
	return versions
}

// Resolve returns the catalogue entry for name at requested. An empty requested
// version resolves to the default version. Versions match as exact strings.
func (m *Manifest) Resolve(name, requested string) (Dependency, error) {
	version := strings.TrimSpace(requested)
	if version == "" {
		v, err := m.DefaultVersion(name)
		if err != nil {
			return Dependency{}, err
		}
		version = v
	}
	for _, d := range m.Dependencies {
		if d.Name == name && d.Version == version {
			return d, nil
		}
	}
	return Dependency{}, foundationerrors.NotFoundError(fmt.Sprintf("%s %s is not supported by this buildpack", name, version)).
		WithContext("available", m.Versions(name)).
		Build()
}

// Verify checks the file at p against the dependency's checksum. A dependency without
// a checksum always verifies.
func (d Dependency) Verify(p string) error {
	if d.SHA256 == "" {
		return nil
	}
	sum, err := Checksum(p)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, d.SHA256) {
		return foundationerrors.InstallError("checksum mismatch for " + d.FileName()).
			WithContext("expected", d.SHA256).
			WithContext("actual", sum).
			Build()
	}
	return nil
}

// Checksum computes the hex sha256 of the file at p.
func Checksum(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
