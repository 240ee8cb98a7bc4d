// Package appdir answers questions about an application source tree: which directories
// hold a project.json, which one the .deployment file selects, which one is the main
// project, and whether the tree already contains a published application.
package appdir

import (
	"bufio"
	"errors"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/fsutil"
)

const (
	// ProjectFile marks a buildable project directory.
	ProjectFile = "project.json"
	// DeploymentFile selects the main project when several exist.
	DeploymentFile = ".deployment"

	runtimeConfigSuffix = ".runtimeconfig.json"
)

var (
	// ErrNoProject is returned when the tree contains no project.
	ErrNoProject = errors.New("no project found")
	// ErrAmbiguousProject is returned when several projects exist and none is selected.
	ErrAmbiguousProject = errors.New("Multiple paths contain a project.json file, but no .deployment file was used")
)

var (
	projectDirective  = regexp.MustCompile(`(?i)^\s*project\s*=\s*(.*)$`)
	projectFileSuffix = regexp.MustCompile(`(?i)(^|/)(project\.json|[^/]*\.xproj|[^/]*\.csproj)$`)
)

// AppDir is a read-only view of one source tree.
type AppDir struct {
	root string
}

// New returns an AppDir rooted at root.
func New(root string) *AppDir {
	return &AppDir{root: root}
}

// ProjectPaths returns every directory containing a project.json, relative to the root
// with forward slashes, sorted. A project.json at the root yields ".". Dot-directories,
// such as restored .nuget packages, are not scanned.
func (a *AppDir) ProjectPaths() ([]string, error) {
	files, err := fsutil.FindFiles(a.root, ProjectFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "scan for projects").
			WithContext("root", a.root).
			Build()
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(a.root, filepath.Dir(f))
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "relativize project path").Build()
		}
		paths = append(paths, filepath.ToSlash(rel))
	}
	sort.Strings(paths)
	return paths, nil
}

// ProjectsWith returns the project paths whose directory contains name.
func (a *AppDir) ProjectsWith(name string) ([]string, error) {
	paths, err := a.ProjectPaths()
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, p := range paths {
		if _, err := os.Stat(filepath.Join(a.root, filepath.FromSlash(p), name)); err == nil {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// DeploymentFileProject returns the project named by the first project= line of the
// .deployment file, or "" when there is no file or no such line. A value naming a
// project file resolves to its directory. The value is not checked against ProjectPaths.
func (a *AppDir) DeploymentFileProject() (string, error) {
	r, err := fsutil.OpenText(filepath.Join(a.root, DeploymentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "read "+DeploymentFile).Build()
	}
	defer func() {
		_ = r.Close()
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := projectDirective.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		return normalizeProjectPath(m[1]), nil
	}
	if err := scanner.Err(); err != nil {
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "read "+DeploymentFile).Build()
	}
	return "", nil
}

func normalizeProjectPath(value string) string {
	p := strings.ReplaceAll(strings.TrimSpace(value), `\`, "/")
	if p == "" {
		return ""
	}
	if loc := projectFileSuffix.FindStringIndex(p); loc != nil {
		p = p[:loc[0]]
		if p == "" {
			p = "."
		}
	}
	return path.Clean(p)
}

// MainProjectPath resolves the project to publish: the .deployment selection when it
// names a known project, otherwise the only project. Several candidates without a valid
// selection yield ErrAmbiguousProject and none yields ErrNoProject.
func (a *AppDir) MainProjectPath() (string, error) {
	paths, err := a.ProjectPaths()
	if err != nil {
		return "", err
	}

	selected, err := a.DeploymentFileProject()
	if err != nil {
		return "", err
	}
	if selected != "" {
		for _, p := range paths {
			if p == selected {
				return p, nil
			}
		}
	}

	switch len(paths) {
	case 1:
		return paths[0], nil
	case 0:
		return "", foundationerrors.WrapError(ErrNoProject, foundationerrors.CategoryNotFound, "resolve main project").
			WithContext("root", a.root).
			Build()
	default:
		return "", foundationerrors.WrapError(ErrAmbiguousProject, foundationerrors.CategoryAmbiguous, "resolve main project").
			WithContext("projects", paths).
			Build()
	}
}

// PublishedProject returns the application name when the root holds exactly one
// *.runtimeconfig.json, or "" otherwise.
func (a *AppDir) PublishedProject() (string, error) {
	matches, err := filepath.Glob(filepath.Join(a.root, "*"+runtimeConfigSuffix))
	if err != nil {
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "glob runtime config").Build()
	}
	if len(matches) != 1 {
		return "", nil
	}
	name, _, _ := strings.Cut(filepath.Base(matches[0]), ".")
	return name, nil
}
