package llm

import (
	"context"
	"time"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
)

// OptionType defines the type of option
type OptionType string

// Available option types
const (
	APITimeoutOption OptionType = "api_timeout"
	APIVersionOption OptionType = "api_version"
	ModelNameOption  OptionType = "model"
)

// Option represents a generic configuration option for the completion client
type Option struct {
	Type  OptionType
	Value any
}

// WithAPITimeout creates an option to set the API timeout in seconds
func WithAPITimeout(timeout int) Option {
	return Option{
		Type:  APITimeoutOption,
		Value: timeout,
	}
}

// WithAPIVersion creates an option to set the Azure OpenAI api-version query parameter
func WithAPIVersion(version string) Option {
	return Option{
		Type:  APIVersionOption,
		Value: version,
	}
}

// WithModel creates an option to set the model name sent in the request body
func WithModel(model string) Option {
	return Option{
		Type:  ModelNameOption,
		Value: model,
	}
}

// Request represents the data needed to generate a prompt for the LLM
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// Response represents the response from the LLM
type Response struct {
	Content string
	Error   error
}

// RawResponse is the undecoded answer of the completion endpoint
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// LLM defines the interface for language model prompting
type LLM interface {
	// Prompt sends a request to the language model and returns its response.
	// It performs at most one network call.
	Prompt(ctx context.Context, req Request) Response
}

// DryRun is an LLM that never calls the network
type DryRun struct{}

func (DryRun) Prompt(_ context.Context, req Request) Response {
	logger.Infof("Dry run request: system=%q user=%q temperature=%.2f",
		common.Preview(req.SystemPrompt, 100), common.Preview(req.UserPrompt, 200), req.Temperature)
	return Response{Content: common.NoSummary}
}

func timeoutDuration(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = common.DefaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}
