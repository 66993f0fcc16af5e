package cmd

import (
	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "build-summary",
	Short: "Bitrise Build Summary - explain CI build outcomes using AI",
	Long: `Bitrise Build Summary asks an Azure OpenAI deployment to explain the outcome of a CI build.
When the model is unavailable it falls back to a rule-based diagnostic, so the step always
produces exactly one summary output.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Logs go to stderr, stdout carries the summary output
		logger.Init(logLevel)
		logger.Debugf("Log level set to: %s", logLevel)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command and handles errors
func Execute() error {
	// Subcommands are added in their respective init() functions
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Set the logging level (debug, info, warn, error)")
}
