package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternlabs/tern/internal/appState"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := appState.Get().Config.Dump()
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}
