package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/webforge/internal/site"
	"git.home.luguber.info/inful/webforge/internal/workspace"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	ClientID string `arg:"" name:"client-id" help:"Client identifier"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	dir, err := workspace.NewManager(cfg.Workspace.Root, cfg.Workspace.DigestLength).DerivePath(i.ClientID)
	if err != nil {
		return err
	}
	summary, err := site.Inspect(filepath.Join(dir, cfg.Site.Filename))
	if err != nil {
		return err
	}
	return printJSON(g.out(), summary)
}
