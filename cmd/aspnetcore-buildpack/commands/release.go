package commands

import (
	"fmt"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/installer"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/release"
)

// ReleaseCmd implements the 'release' command.
type ReleaseCmd struct {
	BuildDir string `arg:"" name:"build-dir" help:"Compiled application directory" type:"existingdir"`
}

func (r *ReleaseCmd) Run(g *Global, _ *CLI) error {
	registry := NewRegistry(installer.Options{BuildDir: r.BuildDir}, nil)
	data, err := release.New(r.BuildDir, registry).Release()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(g.stdout(), "---\n"+string(data))
	return err
}
