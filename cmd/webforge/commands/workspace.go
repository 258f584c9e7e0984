package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/webforge/internal/workspace"
)

// WorkspaceCmd implements the 'workspace' command.
type WorkspaceCmd struct {
	ClientID string `arg:"" name:"client-id" help:"Client identifier"`
	Create   bool   `help:"Create the directory when it does not exist"`
}

func (w *WorkspaceCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	mgr := workspace.NewManager(cfg.Workspace.Root, cfg.Workspace.DigestLength)

	var path string
	if w.Create {
		path, err = mgr.Resolve(w.ClientID)
	} else {
		path, err = mgr.DerivePath(w.ClientID)
	}
	if err != nil {
		return err
	}

	state := "missing"
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		state = "exists"
	}
	_, err = fmt.Fprintf(g.out(), "%s\t%s\n", path, state)
	return err
}
