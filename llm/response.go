package llm

import (
	"errors"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/tidwall/gjson"
)

// previewLength bounds how much of an unrecognized body ends up in an error
const previewLength = 200

// ParseCompletion extracts the generated text from a chat completions body.
// Only the first choice is consulted. Empty content is not an error: it yields common.NoSummary.
func ParseCompletion(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", common.MalformedResponseError(errors.New("response body is not valid JSON"))
	}

	parsed := gjson.ParseBytes(body)

	choices := parsed.Get("choices")
	if choices.IsArray() && len(choices.Array()) > 0 {
		content := strings.TrimSpace(choices.Get("0.message.content").String())
		if content == "" {
			return common.NoSummary, nil
		}
		return content, nil
	}

	if apiErr := parsed.Get("error"); parsed.IsObject() && apiErr.Exists() {
		return "", common.APIError(apiErr.Raw)
	}

	return "", common.UnexpectedFormatError(common.Truncate(string(body), previewLength))
}
