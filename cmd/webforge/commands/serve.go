package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/webforge/internal/metrics"
	"git.home.luguber.info/inful/webforge/internal/server/httpserver"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := NewRuntime(ctx, cfg, g.logger())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	srv := httpserver.New(httpserver.Options{
		Addr:           cfg.Server.Addr,
		MetricsPath:    cfg.Server.MetricsPath,
		PageFilename:   cfg.Site.Filename,
		Orders:         rt.Agent,
		Workspaces:     rt.Workspaces,
		History:        rt.History,
		Clients:        rt.Clients,
		MetricsHandler: metrics.HTTPHandler(rt.Registry),
		Recorder:       rt.Recorder,
		Logger:         g.logger(),
	})
	return srv.ListenAndServe(ctx)
}
