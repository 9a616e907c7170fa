package root

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ternlabs/tern/internal/appState"
	"github.com/ternlabs/tern/internal/chat"
	"github.com/ternlabs/tern/internal/llm"
	"github.com/ternlabs/tern/internal/stream"
	"github.com/ternlabs/tern/internal/tool"
	"github.com/ternlabs/tern/internal/tool/builtin"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := appState.Get()

		session, err := newSession(app)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				return nil
			}

			if err := renderStream(session.Send(ctx, line)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
			fmt.Println()
		}
	},
}

func newSession(app *appState.App) (*chat.Session, error) {
	dispatcher := tool.NewDispatcher()
	if err := builtin.RegisterAll(dispatcher); err != nil {
		return nil, err
	}
	return chat.NewSession(llm.NewClient(app.Config), dispatcher), nil
}

// renderStream prints assistant text and tool annotations as they arrive.
func renderStream(s stream.Stream) error {
	for ev := range s.Events {
		switch e := ev.(type) {
		case stream.TextDeltaEvent:
			fmt.Print(e.Text)
		case stream.ToolResultEvent:
			fmt.Print(e.Text)
		case stream.StreamErrorEvent:
			return e.Err
		}
	}
	<-s.Done
	return nil
}
