package installer

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
)

// BowerInstaller installs Bower globally into the Node.js installation.
type BowerInstaller struct {
	opts Options
	node *NodeInstaller
}

func NewBowerInstaller(opts Options, node *NodeInstaller) *BowerInstaller {
	return &BowerInstaller{opts: opts, node: node}
}

func (b *BowerInstaller) Name() string               { return "Bower" }
func (b *BowerInstaller) CacheDir() string           { return "" }
func (b *BowerInstaller) InstallOrder() int          { return 4 }
func (b *BowerInstaller) InRuntime() bool            { return false }
func (b *BowerInstaller) PathInStaging() string      { return "" }
func (b *BowerInstaller) InstallDescription() string { return "Installing Bower" }

func (b *BowerInstaller) ShouldInstall(app ProjectView) bool {
	if exists(filepath.Join(b.node.BinDir(), "bower")) {
		return false
	}
	return anyProjectWith(app, "bower.json")
}

func (b *BowerInstaller) Install(ctx context.Context, p out.Printer) error {
	return b.opts.Shell.Run(ctx, shell.Command{
		Line: "npm install -g bower",
		Dir:  b.opts.BuildDir,
		Env:  map[string]string{"PATH": "$PATH:" + b.node.BinDir()},
	}, p)
}
