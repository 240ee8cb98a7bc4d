package installer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
)

const (
	// NodeCacheDir is the cache key and build directory of Node.js.
	NodeCacheDir = ".node"
	// NodeDependency is the catalog name of Node.js.
	NodeDependency = "node"
)

// NodeInstaller installs Node.js for projects with npm or bower dependencies. Node.js is
// only needed while compiling.
type NodeInstaller struct {
	opts    Options
	version string
}

// NewNodeInstaller returns an installer for the given Node.js version.
func NewNodeInstaller(opts Options, version string) *NodeInstaller {
	return &NodeInstaller{opts: opts, version: version}
}

func (n *NodeInstaller) Name() string               { return "Node.js" }
func (n *NodeInstaller) CacheDir() string           { return NodeCacheDir }
func (n *NodeInstaller) InstallOrder() int          { return 3 }
func (n *NodeInstaller) InRuntime() bool            { return false }
func (n *NodeInstaller) InstallDescription() string { return "Installing Node.js" }
func (n *NodeInstaller) Version() string            { return n.version }

// PathInStaging resolves against HOME, which is the scratch source directory during
// compilation.
func (n *NodeInstaller) PathInStaging() string {
	return n.binDir("$HOME")
}

// BinDir is the Node.js bin directory under the build directory.
func (n *NodeInstaller) BinDir() string {
	return n.binDir(n.opts.BuildDir)
}

func (n *NodeInstaller) binDir(root string) string {
	return filepath.Join(root, NodeCacheDir, n.distribution(), "bin")
}

func (n *NodeInstaller) distribution() string {
	return fmt.Sprintf("node-v%s-linux-x64", n.version)
}

func (n *NodeInstaller) ShouldInstall(app ProjectView) bool {
	if exists(filepath.Join(n.BinDir(), "node")) {
		return false
	}
	return anyProjectWith(app, "package.json", "bower.json")
}

func (n *NodeInstaller) Install(ctx context.Context, p out.Printer) error {
	dep, err := n.opts.Catalog.Resolve(NodeDependency, n.version)
	if err != nil {
		return err
	}
	p.Print("Node.js version: " + n.version)
	name := n.distribution() + ".tar.gz"
	observability.InfoContext(ctx, "Installing Node.js", logfields.Version(n.version), logfields.Dependency(name))

	archive, err := n.opts.Fetcher.Fetch(ctx, name)
	if err != nil {
		return err
	}
	if err := dep.Verify(archive); err != nil {
		return err
	}
	return Extract(archive, filepath.Join(n.opts.BuildDir, NodeCacheDir))
}

func anyProjectWith(app ProjectView, files ...string) bool {
	for _, f := range files {
		projects, err := app.ProjectsWith(f)
		if err != nil {
			slog.Debug("Project scan failed", logfields.Path(f), logfields.Error(err))
			continue
		}
		if len(projects) > 0 {
			return true
		}
	}
	return false
}
