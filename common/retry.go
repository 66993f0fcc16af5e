package common

import (
	"context"
	"net/http"

	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryConfig holds the configuration for HTTP retry logic
type RetryConfig struct {
	// Maximum number of retries
	RetryMax int
	// Function to determine if a request should be retried
	CheckRetry retryablehttp.CheckRetry
}

// SingleAttemptConfig never retries: a summary request is made once per build and a
// failed attempt goes straight to the fallback.
func SingleAttemptConfig() RetryConfig {
	return RetryConfig{
		RetryMax:   0,
		CheckRetry: NoRetryPolicy,
	}
}

// NoRetryPolicy reports context errors and otherwise hands every response back to the caller,
// including 429 and 5xx, so their status and body stay available.
func NoRetryPolicy(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

// NewRetryableClient creates a new HTTP client with the given retry behaviour
func NewRetryableClient(config RetryConfig) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()

	retryClient.RetryMax = config.RetryMax

	logger.Debugf("Created HTTP client with max retries: %d", config.RetryMax)

	// Only set CheckRetry if provided (non-nil)
	if config.CheckRetry != nil {
		retryClient.CheckRetry = config.CheckRetry
	}

	retryClient.Logger = &zapRetryLogger{}

	return retryClient
}

// zapRetryLogger adapts our zap logger to the interface required by retryablehttp
type zapRetryLogger struct{}

func (z *zapRetryLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.Error(append([]interface{}{msg}, keysAndValues...)...)
}

func (z *zapRetryLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Info(append([]interface{}{msg}, keysAndValues...)...)
}

func (z *zapRetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.Debugw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.Warn(append([]interface{}{msg}, keysAndValues...)...)
}
