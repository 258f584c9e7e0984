package commands

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webforge/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	// Out receives command results. Logs always go to stderr.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"webforge.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Order     OrderCmd     `cmd:"" help:"Process one client order and print the result"`
	Serve     ServeCmd     `cmd:"" help:"Run the HTTP order intake"`
	Workspace WorkspaceCmd `cmd:"" help:"Show the workspace directory of a client"`
	Inspect   InspectCmd   `cmd:"" help:"Summarize the generated page of a client"`
	Events    EventsCmd    `cmd:"" help:"Print the recorded events of an order"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing and installs the default logger. A
// broken configuration file only affects logging setup here; commands that
// need the configuration report the error themselves.
func (c *CLI) AfterApply(g *Global) error {
	logging := config.Default().Logging
	if cfg, err := config.LoadOrDefault(c.Config); err == nil {
		logging = cfg.Logging
	}
	logger := logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return nil
}

// LoadConfig loads the configuration selected by --config, falling back to
// defaults when the file does not exist.
func (c *CLI) LoadConfig() (*config.Config, error) {
	return config.LoadOrDefault(c.Config)
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
