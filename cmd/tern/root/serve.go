package root

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ternlabs/tern/internal/appState"
	"github.com/ternlabs/tern/internal/proxy"
	"github.com/ternlabs/tern/internal/tool"
	"github.com/ternlabs/tern/internal/tool/builtin"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the streaming relay server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appState.Get()

		dispatcher := tool.NewDispatcher()
		if err := builtin.RegisterAll(dispatcher); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return proxy.NewServer(app.Config, dispatcher).Run(ctx)
	},
}
