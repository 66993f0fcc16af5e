package fallback

import (
	"errors"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
)

// Classifier turns pipeline failures into diagnostics. Rules are evaluated in order and
// the first match wins. It is the only producer of user-visible fallback text.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the given rules, always ending with GenericRule
func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{
		rules: append(append([]Rule{}, rules...), GenericRule()),
	}
}

// DefaultRules returns the built-in rules. Signatures from settings are checked before the built-in ones.
func DefaultRules(settings common.Fallback) []Rule {
	signatures := append([]common.DependencySignature{}, settings.Dependencies...)
	signatures = append(signatures, DefaultDependencySignatures...)

	return []Rule{
		MissingStatusRule(),
		MissingDependencyRule(CompileDependencies(signatures), settings.Pins, settings.Upgrades),
		EndpointFailureRule(),
		MissingConfigurationRule(),
		UnusableResponseRule(),
	}
}

// NewDefaultClassifier creates a classifier with DefaultRules
func NewDefaultClassifier(settings common.Fallback) *Classifier {
	return NewClassifier(DefaultRules(settings)...)
}

// Rules returns the rule names in evaluation order
func (c *Classifier) Rules() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.Name)
	}
	return names
}

// Classify returns the diagnostic of the first matching rule. It never panics:
// a failing rule is skipped and the generic diagnostic is used.
func (c *Classifier) Classify(err error, context string) common.Diagnostic {
	if err == nil {
		err = common.UncategorizedError(errors.New("no error to classify"))
	}
	signal := Signal{Err: common.AsError(err), Context: context}

	for _, rule := range c.rules {
		if diag, ok := apply(rule, signal); ok {
			logger.Infof("Fallback rule %s matched %s error", rule.Name, signal.Err.Kind)
			return diag
		}
	}

	return GenericRule().Diagnose(signal)
}

func apply(rule Rule, signal Signal) (diag common.Diagnostic, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Fallback rule %s panicked: %v", rule.Name, r)
			diag, ok = common.Diagnostic{}, false
		}
	}()

	if !rule.Matches(signal) {
		return common.Diagnostic{}, false
	}
	return rule.Diagnose(signal), true
}
