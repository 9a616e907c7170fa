package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ternlabs/tern/internal/appState"
	"github.com/ternlabs/tern/internal/config"
)

var (
	modelFlag       string
	maxTokensFlag   int
	temperatureFlag float64
	logLevelFlag    string
	logFileFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "tern",
	Short: "Stream chat completions with local tool dispatch",
	Long: `Tern talks to a hosted completion API, decodes the response stream as it
arrives, and runs tool calls locally, splicing each result back into the
conversation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return appState.Initialize(overridesFromFlags(cmd))
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return appState.Cleanup()
	},
}

// overridesFromFlags maps only the flags the user actually set.
func overridesFromFlags(cmd *cobra.Command) *config.RuntimeOverrides {
	overrides := &config.RuntimeOverrides{}
	if cmd.Flags().Changed("model") {
		overrides.Model = &modelFlag
	}
	if cmd.Flags().Changed("max-tokens") {
		overrides.MaxTokens = &maxTokensFlag
	}
	if cmd.Flags().Changed("temperature") {
		overrides.Temperature = &temperatureFlag
	}
	if cmd.Flags().Changed("log-level") {
		overrides.LogLevel = &logLevelFlag
	}
	if cmd.Flags().Changed("log-file") {
		overrides.LogFile = &logFileFlag
	}
	return overrides
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&modelFlag, "model", "", "override the configured model")
	pf.IntVar(&maxTokensFlag, "max-tokens", 0, "override the configured token limit")
	pf.Float64Var(&temperatureFlag, "temperature", 0, "override the sampling temperature")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	pf.StringVar(&logFileFlag, "log-file", "", "write logs to a file instead of stderr")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(configCmd)
}
