package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sheetwatch/cmd/sheetwatch/commands"
	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sheetwatch"),
		kong.Description("Watch spreadsheet cells and notify on changes."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, cli)
	os.Exit(errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err))
}
