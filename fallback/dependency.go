package fallback

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
)

// DefaultDependencySignatures recognise missing packages in Python, Node and Go build output
var DefaultDependencySignatures = []common.DependencySignature{
	{
		Name:      "python",
		Pattern:   `(?i)(?:no module named|module not found:)\s*(?:['"]([A-Za-z0-9_\-]+)[A-Za-z0-9_.\-]*['"]|([A-Za-z0-9_\-]+)(?:\.[A-Za-z0-9_.\-]+)?(?:\s*$|\s*[;,]|\s+\())`,
		Manifest:  "requirements.txt",
		PinFormat: "%[1]s==%[2]s",
	},
	{
		Name:      "node",
		Pattern:   `(?:Cannot find module|Can't resolve) '([^'./][^']*)'`,
		Manifest:  "package.json",
		PinFormat: `"%[1]s": "%[2]s"`,
	},
	{
		Name:      "go",
		Pattern:   `no required module provides package ([^\s;]+)`,
		Manifest:  "go.mod",
		PinFormat: "go get %[1]s@%[2]s",
	},
}

// Dependency is a compiled DependencySignature
type Dependency struct {
	Name      string
	Manifest  string
	PinFormat string
	pattern   *regexp.Regexp
}

// MissingDependency is what a Dependency found in the build output
type MissingDependency struct {
	Package   string
	Line      string
	Signature *Dependency
}

// CompileDependencies compiles signatures, skipping the ones with an invalid pattern
func CompileDependencies(signatures []common.DependencySignature) []*Dependency {
	compiled := make([]*Dependency, 0, len(signatures))
	for _, sig := range signatures {
		re, err := regexp.Compile(sig.Pattern)
		if err != nil {
			logger.Warnf("Skipping dependency signature %q: %v", sig.Name, err)
			continue
		}
		if re.NumSubexp() < 1 {
			logger.Warnf("Skipping dependency signature %q: pattern needs a capture group for the package name", sig.Name)
			continue
		}

		dep := &Dependency{
			Name:      sig.Name,
			Manifest:  sig.Manifest,
			PinFormat: sig.PinFormat,
			pattern:   re,
		}
		if dep.Manifest == "" {
			dep.Manifest = "the dependency manifest"
		}
		if dep.PinFormat == "" {
			dep.PinFormat = "%[1]s@%[2]s"
		}
		compiled = append(compiled, dep)
	}
	return compiled
}

// Find returns the first missing package reported in output. The package name is the
// first non-empty capture group, so a pattern may use alternatives.
func (d *Dependency) Find(output string) (MissingDependency, bool) {
	for _, line := range strings.Split(output, "\n") {
		match := d.pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		for _, pkg := range match[1:] {
			if pkg == "" {
				continue
			}
			return MissingDependency{
				Package:   pkg,
				Line:      strings.TrimSpace(line),
				Signature: d,
			}, true
		}
	}
	return MissingDependency{}, false
}

// Pin renders the pinned requirement for pkg. It reports false when no version is known.
func (d *Dependency) Pin(pkg string, pins map[string]string) (string, bool) {
	version := pins[pkg]
	if version == "" {
		return "", false
	}
	return fmt.Sprintf(d.PinFormat, pkg, version), true
}

// formatUpgrades renders "upgrade a to 1.0 and b to 2.0" in a stable order
func formatUpgrades(upgrades map[string]string) string {
	if len(upgrades) == 0 {
		return ""
	}
	names := make([]string, 0, len(upgrades))
	for name := range upgrades {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s to %s", name, upgrades[name]))
	}
	return "upgrade " + strings.Join(parts, " and ")
}
