package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/cbsl-assistant/internal/common"
	"github.com/dtnitsch/cbsl-assistant/internal/server"
	"github.com/urfave/cli/v2"
)

// ServeAction runs the HTTP server until SIGINT or SIGTERM.
func ServeAction(c *cli.Context) error {
	app, err := common.NewApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(app.Config.Server, app.Pipeline, app.Logger.Named("http"), app.Config.Storage.RecentLimit)
	return srv.Start(ctx)
}
