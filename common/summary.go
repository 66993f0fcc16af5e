package common

import "strings"

// NoSummary is emitted when the model answered with empty content
const NoSummary = "No AI summary generated."

// Diagnostic is the structured fallback text produced when the model call cannot be used.
type Diagnostic struct {
	Issue string `yaml:"issue"` // What went wrong
	Cause string `yaml:"cause"` // Most likely reason
	Fix   string `yaml:"fix"`   // Concrete remediation
	Next  string `yaml:"next"`  // What to do after fixing
}

func (d Diagnostic) String() string {
	lines := []string{
		"ISSUE: " + oneLine(d.Issue),
		"CAUSE: " + oneLine(d.Cause),
		"FIX: " + oneLine(d.Fix),
		"NEXT: " + oneLine(d.Next),
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
