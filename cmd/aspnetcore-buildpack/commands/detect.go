package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/appdir"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
)

// DetectCmd implements the 'detect' command.
type DetectCmd struct {
	BuildDir string `arg:"" name:"build-dir" help:"Application directory" type:"existingdir"`
}

func (d *DetectCmd) Run(g *Global, _ *CLI) error {
	ok, err := Detect(d.BuildDir)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotDetected
	}
	_, err = fmt.Fprintln(g.stdout(), "ASP.NET Core")
	return err
}

// Detect reports whether dir holds a project.json project or a published application.
func Detect(dir string) (bool, error) {
	app := appdir.New(dir)
	paths, err := app.ProjectPaths()
	if err != nil {
		return false, err
	}
	if len(paths) > 0 {
		slog.Debug("Detected project", logfields.Project(paths[0]))
		return true, nil
	}
	name, err := app.PublishedProject()
	if err != nil {
		return false, err
	}
	if name != "" {
		slog.Debug("Detected published application", logfields.Project(name))
		return true, nil
	}
	return false, nil
}
