package fallback

import (
	"fmt"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-build-summary/ci"
	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
)

// errorTextLimit bounds how much of a raw error ends up in a diagnostic
const errorTextLimit = 200

// Signal is everything a rule may look at
type Signal struct {
	Err     *common.Error
	Context string
}

// Rule maps a failure signal to a diagnostic. Rules are independent of each other:
// ordering is decided by the Classifier.
type Rule struct {
	Name     string
	Matches  func(Signal) bool
	Diagnose func(Signal) common.Diagnostic
}

// MissingStatusRule fires when the CI step did not export the build status
func MissingStatusRule() Rule {
	return Rule{
		Name: "missing-status",
		Matches: func(s Signal) bool {
			return s.Err.Kind == common.KindConfig && s.Err.HasName(ci.EnvStatus)
		},
		Diagnose: func(s Signal) common.Diagnostic {
			return common.Diagnostic{
				Issue: "AI summary unavailable: the build status was not passed to the summary step.",
				Cause: fmt.Sprintf("%s is empty or not exported, so the outcome of the build is unknown.", ci.EnvStatus),
				Fix:   fmt.Sprintf("Export the job status to the summary step environment, e.g. %s: ${{ job.status }}.", ci.EnvStatus),
				Next:  "Re-run the workflow and check that the summary step reports the build outcome.",
			}
		},
	}
}

// MissingDependencyRule fires when the build output shows a package that could not be found
func MissingDependencyRule(deps []*Dependency, pins, upgrades map[string]string) Rule {
	find := func(output string) (MissingDependency, bool) {
		for _, dep := range deps {
			if missing, ok := dep.Find(output); ok {
				return missing, true
			}
		}
		return MissingDependency{}, false
	}

	return Rule{
		Name: "missing-dependency",
		Matches: func(s Signal) bool {
			_, ok := find(s.Context)
			return ok
		},
		Diagnose: func(s Signal) common.Diagnostic {
			missing, _ := find(s.Context)
			sig := missing.Signature

			fix := fmt.Sprintf("Pin %s to its last known-good version in %s", missing.Package, sig.Manifest)
			if pin, ok := sig.Pin(missing.Package, pins); ok {
				fix = fmt.Sprintf("Add %s to %s", pin, sig.Manifest)
			}
			if upgrade := formatUpgrades(upgrades); upgrade != "" {
				fix += " and " + upgrade
			}

			return common.Diagnostic{
				Issue: fmt.Sprintf("Build likely failed due to the missing %s dependency '%s'.", sig.Name, missing.Package),
				Cause: fmt.Sprintf("The build output reports: %s", common.Truncate(missing.Line, errorTextLimit)),
				Fix:   fix + ".",
				Next:  fmt.Sprintf("Commit the updated %s and re-run the build.", sig.Manifest),
			}
		},
	}
}

// EndpointFailureRule fires when the completion endpoint answered with an error status,
// could not be reached, or did not answer in time
func EndpointFailureRule() Rule {
	return Rule{
		Name: "endpoint-failure",
		Matches: func(s Signal) bool {
			return s.Err.Kind == common.KindHTTP || s.Err.Kind == common.KindTimeout
		},
		Diagnose: func(s Signal) common.Diagnostic {
			var issue, cause string
			switch {
			case s.Err.Kind == common.KindTimeout:
				issue = "AI summary unavailable: the completion request hit a timeout."
				cause = "The completion endpoint did not answer before the deadline."
			case s.Err.StatusCode == 0:
				issue = "AI summary unavailable: the completion endpoint could not be reached."
				cause = "The request failed before an HTTP status was received."
			default:
				issue = fmt.Sprintf("AI summary unavailable due to HTTP error %d.", s.Err.StatusCode)
				cause = fmt.Sprintf("The completion endpoint answered with status code %d.", s.Err.StatusCode)
			}

			return common.Diagnostic{
				Issue: issue,
				Cause: cause,
				Fix: fmt.Sprintf("Check the service health and quota of the Azure OpenAI resource, and verify the %s credentials, %s and %s.",
					ci.EnvKey, ci.EnvEndpoint, ci.EnvDeployment),
				Next: "Re-run the summary step once the service responds. The build result itself is not affected.",
			}
		},
	}
}

// MissingConfigurationRule fires for any other missing required setting
func MissingConfigurationRule() Rule {
	return Rule{
		Name: "missing-configuration",
		Matches: func(s Signal) bool {
			return s.Err.Kind == common.KindConfig
		},
		Diagnose: func(s Signal) common.Diagnostic {
			names := strings.Join(s.Err.Names, ", ")
			return common.Diagnostic{
				Issue: "AI summary unavailable: the summary step is not configured.",
				Cause: fmt.Sprintf("Required environment variables are not set: %s.", names),
				Fix:   fmt.Sprintf("Provide %s to the summary step, using secrets for %s.", names, ci.EnvKey),
				Next:  "Re-run the workflow after updating the step configuration.",
			}
		},
	}
}

// UnusableResponseRule fires when the endpoint answered but the answer could not be used
func UnusableResponseRule() Rule {
	return Rule{
		Name: "unusable-response",
		Matches: func(s Signal) bool {
			switch s.Err.Kind {
			case common.KindMalformedResponse, common.KindUnexpectedFormat, common.KindAPI:
				return true
			}
			return false
		},
		Diagnose: func(s Signal) common.Diagnostic {
			var cause string
			switch s.Err.Kind {
			case common.KindAPI:
				cause = "The completion endpoint returned an error: " + common.Truncate(s.Err.Detail, errorTextLimit)
			case common.KindMalformedResponse:
				cause = "The completion endpoint returned a body that is not valid JSON."
			default:
				cause = "The completion endpoint returned JSON without any choices."
			}

			return common.Diagnostic{
				Issue: "AI summary unavailable: the completion response could not be used.",
				Cause: cause,
				Fix:   fmt.Sprintf("Check that %s points to a chat completions deployment and that content filters allow build logs.", ci.EnvDeployment),
				Next:  "Inspect the step log at debug level for the raw response, then re-run the summary step.",
			}
		},
	}
}

// GenericRule matches everything and embeds the error text
func GenericRule() Rule {
	return Rule{
		Name:    "generic",
		Matches: func(Signal) bool { return true },
		Diagnose: func(s Signal) common.Diagnostic {
			return common.Diagnostic{
				Issue: "AI summary unavailable.",
				Cause: "Error generating AI summary: " + common.Truncate(s.Err.Error(), errorTextLimit),
				Fix:   "Inspect the summary step log for the full error and fix the reported problem.",
				Next:  "Re-run the summary step.",
			}
		},
	}
}
