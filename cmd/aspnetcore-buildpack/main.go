package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/aspnetcore-buildpack/cmd/aspnetcore-buildpack/commands"
	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("aspnetcore-buildpack"),
		kong.Description("Detect, compile and release ASP.NET Core applications"),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&commands.Global{Stdout: os.Stdout}, cli)
	switch {
	case err == nil:
		return
	case errors.Is(err, commands.ErrNotDetected):
		// detect signals "not applicable" through the exit status only.
		os.Exit(1)
	case errors.Is(err, commands.ErrCompileFailed):
		// already reported on the console
		os.Exit(1)
	}
	foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
