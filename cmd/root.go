package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "pathwise",
	Short: "Adaptive learning paths in the terminal",
	Long: "Pathwise walks a learner through a goal: an entry test, guided steps with " +
		"reflection questions, and a generated final test.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.FlagDB, "", "Path to SQLite database file (overrides PATHWISE_DB)")
	pf.String(config.FlagContent, "", "Directory of goal YAML files (overrides PATHWISE_CONTENT_DIR)")
	pf.String(config.FlagGatewayURL, "", "Use a remote `pathwise serve` gateway (overrides PATHWISE_GATEWAY_URL)")
	pf.String(config.FlagLogFile, "", "Log file for interactive commands (overrides PATHWISE_LOG_FILE)")

	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(drillCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
