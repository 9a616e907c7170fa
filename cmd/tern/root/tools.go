package root

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternlabs/tern/internal/tool"
	"github.com/ternlabs/tern/internal/tool/builtin"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalog as advertised to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		dispatcher := tool.NewDispatcher()
		if err := builtin.RegisterAll(dispatcher); err != nil {
			return err
		}

		out, err := json.MarshalIndent(dispatcher.Descriptors(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
