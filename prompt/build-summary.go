package prompt

import (
	"os"

	"github.com/bitrise-io/bitrise-plugins-build-summary/ci"
	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/bitrise-io/bitrise-plugins-build-summary/llm"
)

// DefaultPromptFile is read from the working directory of the step
const DefaultPromptFile = "prompt.txt"

// Load reads the base prompt verbatim
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", common.PromptLoadError(err)
	}
	return string(data), nil
}

func GetContextPrompt(status, context string) string {
	return `Outcome: ` + status + `

Error/Context:
` + context
}

func GetBuildSummaryPrompt(basePrompt, status, context string) string {
	return basePrompt + "\n\n" + GetContextPrompt(status, context)
}

// BuildRequest assembles the completion request for a validated configuration
func BuildRequest(cfg ci.Config, basePrompt string, settings common.Settings) llm.Request {
	return llm.Request{
		SystemPrompt: settings.SystemPrompt,
		UserPrompt:   GetBuildSummaryPrompt(basePrompt, cfg.Status, cfg.Context),
		Temperature:  settings.Temperature,
	}
}
