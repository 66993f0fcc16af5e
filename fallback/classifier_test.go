package fallback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldOf(t *testing.T, d common.Diagnostic, field string) string {
	t.Helper()
	for _, line := range strings.Split(d.String(), "\n") {
		if strings.HasPrefix(line, field+": ") {
			return strings.TrimPrefix(line, field+": ")
		}
	}
	t.Fatalf("field %s not found in %q", field, d.String())
	return ""
}

func TestDefaultRuleOrder(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})
	assert.Equal(t, []string{
		"missing-status",
		"missing-dependency",
		"endpoint-failure",
		"missing-configuration",
		"unusable-response",
		"generic",
	}, c.Rules())
}

func TestClassify_MissingStatus(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	d := c.Classify(common.ConfigError("AOAI_KEY", "STATUS"), "module not found: requests")

	assert.Contains(t, d.Issue, "build status")
	assert.Contains(t, d.Cause, "STATUS")
	assert.Contains(t, d.Fix, "STATUS")
}

func TestClassify_MissingDependency(t *testing.T) {
	settings := common.Fallback{
		Pins:     map[string]string{"requests": "2.31.0"},
		Upgrades: map[string]string{"flask": "2.3.3"},
	}
	c := NewDefaultClassifier(settings)

	failures := []error{
		common.HTTPError(429, "slow down"),
		common.HTTPError(500, "boom"),
		common.TimeoutError(context.DeadlineExceeded),
		common.MalformedResponseError(errors.New("bad json")),
		common.ConfigError("AOAI_ENDPOINT"),
		errors.New("something else"),
	}

	for _, failure := range failures {
		t.Run(string(common.KindOf(failure)), func(t *testing.T) {
			d := c.Classify(failure, "Traceback (most recent call last):\nmodule not found: requests\n")

			fix := fieldOf(t, d, "FIX")
			assert.Contains(t, fix, "requests==2.31.0")
			assert.Contains(t, fix, "requirements.txt")
			assert.Contains(t, fix, "upgrade flask to 2.3.3")
			assert.Contains(t, d.Issue, "'requests'")
			assert.Contains(t, d.Cause, "module not found: requests")
		})
	}
}

func TestClassify_MissingDependencyWithoutPin(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	d := c.Classify(common.HTTPError(503, ""), "ModuleNotFoundError: No module named 'yaml'")

	assert.Equal(t, "Pin yaml to its last known-good version in requirements.txt.", d.Fix)
	assert.NotContains(t, d.String(), "<version>")
}

func TestClassify_CustomSignatureHasPriority(t *testing.T) {
	settings := common.Fallback{
		Dependencies: []common.DependencySignature{
			{Name: "ruby", Pattern: `cannot load such file -- ([\w/]+)`, Manifest: "Gemfile", PinFormat: "gem '%[1]s', '%[2]s'"},
			{Name: "broken", Pattern: `([unclosed`},
			{Name: "no-group", Pattern: `missing thing`},
		},
		Pins: map[string]string{"nokogiri": "1.16.0"},
	}
	c := NewDefaultClassifier(settings)

	d := c.Classify(common.TimeoutError(nil), "LoadError: cannot load such file -- nokogiri")
	assert.Equal(t, "Add gem 'nokogiri', '1.16.0' to Gemfile.", d.Fix)

	// Invalid signatures are skipped, the endpoint rule still applies
	d = c.Classify(common.TimeoutError(nil), "missing thing")
	assert.Contains(t, d.Issue, "timeout")
}

func TestClassify_EndpointFailure(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	t.Run("429", func(t *testing.T) {
		d := c.Classify(common.HTTPError(429, `{"error":"rate limited"}`), "(none)")
		assert.Contains(t, d.Issue, "429")
		assert.Contains(t, d.Fix, "service health")
		assert.Contains(t, d.Fix, "credentials")
		assert.NotContains(t, d.String(), "rate limited", "raw bodies stay out of the diagnostic")
	})

	t.Run("timeout", func(t *testing.T) {
		d := c.Classify(common.TimeoutError(context.DeadlineExceeded), "(none)")
		assert.Contains(t, d.Issue, "timeout")
		assert.Contains(t, d.Fix, "credentials")
	})

	t.Run("unreachable", func(t *testing.T) {
		d := c.Classify(common.HTTPError(0, "dial tcp: connection refused"), "(none)")
		assert.Contains(t, d.Issue, "could not be reached")
	})
}

func TestClassify_MissingConfiguration(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	d := c.Classify(common.ConfigError("AOAI_ENDPOINT", "AOAI_KEY"), "(none)")
	assert.Contains(t, d.Cause, "AOAI_ENDPOINT, AOAI_KEY")
}

func TestClassify_UnusableResponse(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	d := c.Classify(common.APIError(`{"message":"content filtered"}`), "(none)")
	assert.Contains(t, d.Cause, "content filtered")

	d = c.Classify(common.UnexpectedFormatError(`{"secret":"body"}`), "(none)")
	assert.NotContains(t, d.String(), "secret")
}

func TestClassify_GenericTruncatesError(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	long := strings.Repeat("x", 1000)
	d := c.Classify(errors.New(long), "(none)")

	assert.Equal(t, "AI summary unavailable.", d.Issue)
	assert.True(t, strings.HasPrefix(d.Cause, "Error generating AI summary: xxx"))
	assert.Less(t, len(d.Cause), 300)
}

func TestClassify_PromptLoadUsesGeneric(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	d := c.Classify(common.PromptLoadError(errors.New("open prompt.txt: no such file or directory")), "(none)")
	assert.Contains(t, d.Cause, "prompt.txt")
}

func TestClassify_PanickingRuleIsSkipped(t *testing.T) {
	panicking := Rule{
		Name:     "panics",
		Matches:  func(Signal) bool { panic("rule bug") },
		Diagnose: func(Signal) common.Diagnostic { return common.Diagnostic{} },
	}
	c := NewClassifier(panicking)

	var d common.Diagnostic
	require.NotPanics(t, func() {
		d = c.Classify(errors.New("boom"), "")
	})
	assert.Equal(t, "AI summary unavailable.", d.Issue)
}

func TestClassify_NilError(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})
	d := c.Classify(nil, "")
	assert.NotEmpty(t, d.Issue)
}

func TestClassify_AlwaysFourFields(t *testing.T) {
	c := NewDefaultClassifier(common.Fallback{})

	failures := []error{
		common.ConfigError("STATUS"),
		common.ConfigError("AOAI_KEY"),
		common.PromptLoadError(errors.New("x")),
		common.HTTPError(401, ""),
		common.TimeoutError(nil),
		common.MalformedResponseError(errors.New("x")),
		common.UnexpectedFormatError("x"),
		common.APIError("x"),
		common.UncategorizedError(errors.New("x")),
	}
	for _, failure := range failures {
		d := c.Classify(failure, "(none)")
		for _, field := range []string{"ISSUE", "CAUSE", "FIX", "NEXT"} {
			assert.NotEmpty(t, fieldOf(t, d, field), "%s for %v", field, failure)
		}
	}
}
