package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sashabaranov/go-openai"
)

// AzureOpenAIModel implements the LLM interface against an Azure OpenAI chat completions deployment
type AzureOpenAIModel struct {
	client     *retryablehttp.Client
	endpoint   string
	deployment string
	apiKey     string
	apiVersion string
	modelName  string
	apiTimeout int // in seconds
}

// NewAzureOpenAI creates a new Azure OpenAI client for one deployment
func NewAzureOpenAI(endpoint, deployment, apiKey string, opts ...Option) (*AzureOpenAIModel, error) {
	if endpoint == "" || deployment == "" || apiKey == "" {
		return nil, errors.New("azure openai endpoint, deployment and API key cannot be empty")
	}

	model := &AzureOpenAIModel{
		client:     common.NewRetryableClient(common.SingleAttemptConfig()),
		endpoint:   endpoint,
		deployment: deployment,
		apiKey:     apiKey,
		apiVersion: common.DefaultAPIVersion,
		modelName:  deployment,
		apiTimeout: common.DefaultTimeoutSeconds,
	}

	for _, opt := range opts {
		switch opt.Type {
		case APITimeoutOption:
			if timeout, ok := opt.Value.(int); ok && timeout > 0 {
				model.apiTimeout = timeout
			}
		case APIVersionOption:
			if version, ok := opt.Value.(string); ok && version != "" {
				model.apiVersion = version
			}
		case ModelNameOption:
			if modelName, ok := opt.Value.(string); ok && modelName != "" {
				model.modelName = modelName
			}
		}
	}

	logger.Debugf("Azure OpenAI client initialized with deployment: %s, api-version: %s, timeout: %d seconds",
		model.deployment, model.apiVersion, model.apiTimeout)

	return model, nil
}

// URL returns the chat completions URL of the deployment
func (a *AzureOpenAIModel) URL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		a.endpoint, url.PathEscape(a.deployment), url.QueryEscape(a.apiVersion))
}

// NewChatCompletionRequest converts a Request to the wire format of the endpoint
func (a *AzureOpenAIModel) NewChatCompletionRequest(req Request) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: a.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserPrompt,
			},
		},
		Temperature: req.Temperature,
	}
}

// chatCompletionBody is the request body on the wire. go-openai omits a zero temperature,
// which the service would replace with its own default.
type chatCompletionBody struct {
	openai.ChatCompletionRequest
	Temperature float32 `json:"temperature"`
}

// EncodeChatCompletionRequest marshals req, always including the temperature
func (a *AzureOpenAIModel) EncodeChatCompletionRequest(req Request) ([]byte, error) {
	return json.Marshal(chatCompletionBody{
		ChatCompletionRequest: a.NewChatCompletionRequest(req),
		Temperature:           req.Temperature,
	})
}

// Prompt sends the request once and interprets the answer
func (a *AzureOpenAIModel) Prompt(ctx context.Context, req Request) Response {
	raw, err := a.Send(ctx, req)
	if err != nil {
		return Response{Error: err}
	}

	content, err := ParseCompletion(raw.Body)
	if err != nil {
		logger.Debugf("Unusable response body: %s", common.Preview(string(raw.Body), 500))
		return Response{Error: err}
	}

	return Response{Content: content}
}

// Send issues exactly one POST to the deployment, bounded by the API timeout.
// Non-2xx answers are returned as HTTP errors, an elapsed deadline as a timeout error.
func (a *AzureOpenAIModel) Send(ctx context.Context, req Request) (RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutDuration(a.apiTimeout))
	defer cancel()

	body, err := a.EncodeChatCompletionRequest(req)
	if err != nil {
		return RawResponse{}, fmt.Errorf("encoding chat completion request: %w", err)
	}

	logger.Debugf("Making request to endpoint: %s", a.endpoint)
	logger.Debugf("Using deployment: %s", a.deployment)
	logger.Debugf("Body preview: %s...", common.Truncate(string(body), 100))

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, a.URL(), bytes.NewReader(body))
	if err != nil {
		return RawResponse{}, fmt.Errorf("creating chat completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return RawResponse{}, transportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawResponse{}, transportError(ctx, err)
	}

	logger.Debugf("Got response status: %d", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debugf("HTTP Error: %d - %s", resp.StatusCode, common.Preview(string(respBody), 500))
		return RawResponse{}, common.HTTPError(resp.StatusCode, string(respBody))
	}

	return RawResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		logger.Debugf("Request timed out: %v", err)
		return common.TimeoutError(err)
	}

	logger.Debugf("Transport error: %v", err)
	return common.HTTPError(0, err.Error())
}
