package summary

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/bitrise-io/bitrise-plugins-build-summary/ci"
	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/bitrise-io/bitrise-plugins-build-summary/fallback"
	"github.com/bitrise-io/bitrise-plugins-build-summary/llm"
	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
	"github.com/bitrise-io/bitrise-plugins-build-summary/prompt"
)

// ClientFactory creates the completion client for a validated configuration
type ClientFactory func(cfg ci.Config, settings common.Settings) (llm.LLM, error)

// Summarizer runs the config → prompt → completion pipeline and falls back to a
// classified diagnostic on any failure.
type Summarizer struct {
	Lookup     ci.LookupFunc
	PromptFile string
	Settings   common.Settings
	Classifier *fallback.Classifier
	NewClient  ClientFactory
}

// NewAzureClient is the ClientFactory used outside of tests
func NewAzureClient(cfg ci.Config, settings common.Settings) (llm.LLM, error) {
	return llm.NewAzureOpenAI(cfg.Endpoint, cfg.Deployment, cfg.APIKey,
		llm.WithAPITimeout(settings.TimeoutSeconds),
		llm.WithAPIVersion(settings.APIVersion),
	)
}

// NewSummarizer creates a Summarizer reading the process environment
func NewSummarizer(promptFile string, settings common.Settings) *Summarizer {
	return &Summarizer{
		Lookup:     os.LookupEnv,
		PromptFile: promptFile,
		Settings:   settings,
		Classifier: fallback.NewDefaultClassifier(settings.Fallback),
		NewClient:  NewAzureClient,
	}
}

// Run summarizes and emits the result. The emitter is called exactly once, whatever happened before.
func (s *Summarizer) Run(ctx context.Context, emitter *ci.Emitter) error {
	return emitter.Emit(s.Summarize(ctx))
}

// Summarize returns the text of the summary block. It never fails and never panics.
func (s *Summarizer) Summarize(ctx context.Context) (body string) {
	buildContext := ci.DefaultContext

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Exception in summary pipeline: %v", r)
			logger.Debugf("Traceback: %s", debug.Stack())
			body = s.fallback(common.UncategorizedError(fmt.Errorf("unexpected failure: %v", r)), buildContext)
		}
	}()

	cfg, err := ci.LoadConfig(s.Lookup)
	buildContext = cfg.Context
	if err != nil {
		return s.fallback(err, buildContext)
	}
	logger.Debugf("Using configuration: %s", cfg)

	basePrompt, err := prompt.Load(s.PromptFile)
	if err != nil {
		return s.fallback(err, buildContext)
	}

	req := prompt.BuildRequest(cfg, basePrompt, s.Settings)

	client, err := s.NewClient(cfg, s.Settings)
	if err != nil {
		return s.fallback(common.UncategorizedError(err), buildContext)
	}

	resp := client.Prompt(ctx, req)
	if resp.Error != nil {
		return s.fallback(resp.Error, buildContext)
	}

	logger.Info("AI summary generated")
	return resp.Content
}

func (s *Summarizer) fallback(err error, buildContext string) string {
	logger.Warnf("AI summary unavailable: %v", err)

	classifier := s.Classifier
	if classifier == nil {
		classifier = fallback.NewDefaultClassifier(s.Settings.Fallback)
	}
	return classifier.Classify(err, buildContext).String()
}
