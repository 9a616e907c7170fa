package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ternlabs/tern/internal/appState"
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the streamed reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appState.Get()

		session, err := newSession(app)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := renderStream(session.Send(ctx, strings.Join(args, " "))); err != nil {
			return err
		}
		fmt.Println()
		return nil
	},
}
