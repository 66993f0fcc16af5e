package common

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which pipeline stage produced a failure
type Kind string

const (
	KindConfig            Kind = "config"
	KindPromptLoad        Kind = "prompt_load"
	KindHTTP              Kind = "http"
	KindTimeout           Kind = "timeout"
	KindMalformedResponse Kind = "malformed_response"
	KindUnexpectedFormat  Kind = "unexpected_format"
	KindAPI               Kind = "api"
	KindUncategorized     Kind = "uncategorized"
)

// Error is the single error type flowing out of every stage of the summary pipeline.
// Only the fields relevant to the Kind are populated.
type Error struct {
	Kind       Kind
	Names      []string // missing configuration names, KindConfig only
	StatusCode int      // KindHTTP only
	Detail     string   // body, API error details or preview
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Names, ", "))
	case KindPromptLoad:
		return fmt.Sprintf("failed to load prompt: %v", e.Err)
	case KindHTTP:
		return fmt.Sprintf("completion endpoint returned HTTP %d: %s", e.StatusCode, e.Detail)
	case KindTimeout:
		return "completion request timed out"
	case KindMalformedResponse:
		return fmt.Sprintf("malformed response: %v", e.Err)
	case KindAPI:
		return fmt.Sprintf("API error: %s", e.Detail)
	case KindUnexpectedFormat:
		return fmt.Sprintf("unexpected response format: %s", e.Detail)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasName reports whether a configuration error names the given setting
func (e *Error) HasName(name string) bool {
	for _, n := range e.Names {
		if n == name {
			return true
		}
	}
	return false
}

func ConfigError(names ...string) *Error {
	return &Error{Kind: KindConfig, Names: names}
}

func PromptLoadError(err error) *Error {
	return &Error{Kind: KindPromptLoad, Err: err}
}

func HTTPError(statusCode int, body string) *Error {
	return &Error{Kind: KindHTTP, StatusCode: statusCode, Detail: body}
}

func TimeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Err: err}
}

func MalformedResponseError(err error) *Error {
	return &Error{Kind: KindMalformedResponse, Err: err}
}

func APIError(details string) *Error {
	return &Error{Kind: KindAPI, Detail: details}
}

func UnexpectedFormatError(preview string) *Error {
	return &Error{Kind: KindUnexpectedFormat, Detail: preview}
}

// UncategorizedError wraps anything that did not come from a known stage
func UncategorizedError(err error) *Error {
	return &Error{Kind: KindUncategorized, Err: err}
}

// AsError returns the pipeline Error carried by err, wrapping unknown errors as uncategorized.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return UncategorizedError(err)
}

// KindOf returns the Kind of err, KindUncategorized for foreign errors
func KindOf(err error) Kind {
	if e := AsError(err); e != nil {
		return e.Kind
	}
	return ""
}
