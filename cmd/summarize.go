package cmd

import (
	"os"

	"github.com/bitrise-io/bitrise-plugins-build-summary/ci"
	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/bitrise-io/bitrise-plugins-build-summary/llm"
	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
	"github.com/bitrise-io/bitrise-plugins-build-summary/prompt"
	"github.com/bitrise-io/bitrise-plugins-build-summary/summary"
	"github.com/spf13/cobra"
)

var (
	// summarize flags
	promptFile     string
	settingsFile   string
	timeoutSeconds int
	dryRun         bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize the build outcome using AI",
	Long: `Read the build outcome from the environment, ask the configured Azure OpenAI deployment
to explain it, and print a single "summary" output block on stdout. Redirect stdout into the
step output file (e.g. >> $GITHUB_OUTPUT). Failures of the AI call are reported through a
rule-based diagnostic instead of a non-zero exit code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		logger.Info("Running AI build summary...")
		logger.Debugf("Environment variables: %v", ci.EnvironmentNames(os.Environ()))

		settings := common.WithYamlFile(settingsFile)
		if cmd.Flags().Changed("timeout") && timeoutSeconds > 0 {
			settings.TimeoutSeconds = timeoutSeconds
		}
		logger.Debugf("Using settings: %+v", settings)

		s := summary.NewSummarizer(promptFile, settings)
		if dryRun {
			logger.Info("Dry run, the completion endpoint will not be called")
			s.NewClient = func(ci.Config, common.Settings) (llm.LLM, error) {
				return llm.DryRun{}, nil
			}
		}

		if err := s.Run(cmd.Context(), ci.NewEmitter(cmd.OutOrStdout())); err != nil {
			// Nothing left to fall back to, the build itself must not fail
			logger.Errorf("Failed to emit summary: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&promptFile, "prompt-file", prompt.DefaultPromptFile, "Path of the base prompt file")
	summarizeCmd.Flags().StringVar(&settingsFile, "settings", "", "Path of the settings file (default: search for build-summary.yml)")
	summarizeCmd.Flags().IntVar(&timeoutSeconds, "timeout", common.DefaultTimeoutSeconds, "Timeout of the completion request in seconds")
	summarizeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the request without calling the completion endpoint")
}
