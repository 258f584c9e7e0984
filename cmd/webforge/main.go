package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webforge/cmd/webforge/commands"
	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
	"git.home.luguber.info/inful/webforge/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}

	parser := kong.Parse(cli,
		kong.Name("webforge"),
		kong.Description("WebForge: turn client orders into generated websites and invoices."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := parser.Run(global, cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		os.Exit(adapter.Report(os.Stderr, err))
	}
}
