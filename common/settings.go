package common

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bitrise-io/bitrise-plugins-build-summary/logger"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSystemPrompt   = "You are an expert CI assistant."
	DefaultTemperature    = 0.2
	DefaultTimeoutSeconds = 30
	DefaultAPIVersion     = "2024-02-15-preview"
)

// SettingsFileNames are looked up in the working directory, then in the tree below it
var SettingsFileNames = []string{"build-summary.yml", "build-summary.yaml"}

// DependencySignature describes how a missing dependency shows up in build output
// and how to pin it. Pattern must contain one capture group for the package name.
type DependencySignature struct {
	Name      string `yaml:"name"`
	Pattern   string `yaml:"pattern"`
	Manifest  string `yaml:"manifest"`
	PinFormat string `yaml:"pin_format"` // %[1]s is the package, %[2]s the version
}

type Fallback struct {
	Dependencies []DependencySignature `yaml:"dependencies"`
	// Known good versions by package name
	Pins map[string]string `yaml:"pins"`
	// Packages that should be upgraded whenever a dependency problem is reported
	Upgrades map[string]string `yaml:"upgrades"`
}

type Settings struct {
	SystemPrompt   string   `yaml:"system_prompt"`
	Temperature    float32  `yaml:"temperature"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	APIVersion     string   `yaml:"api_version"`
	Fallback       Fallback `yaml:"fallback"`
}

func WithDefaultSettings() Settings {
	return Settings{
		SystemPrompt:   DefaultSystemPrompt,
		Temperature:    DefaultTemperature,
		TimeoutSeconds: DefaultTimeoutSeconds,
		APIVersion:     DefaultAPIVersion,
	}
}

// WithYamlFile loads settings from path, or from the first settings file found when path is empty.
// Any problem with the file falls back to the defaults.
func WithYamlFile(path string) Settings {
	settings := WithDefaultSettings()

	filePath := path
	if filePath == "" {
		filePath = findSettingsFile(".")
	}

	if filePath == "" {
		logger.Infof("No settings file found in the current directory or subdirectories. Using default settings.")
		return settings
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Infof("Failed to read settings file %s: %v", filePath, err)
		return settings
	}

	parsed := WithDefaultSettings()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		logger.Infof("Failed to parse YAML file %s: %v", filePath, err)
		return settings
	}

	logger.Infof("Using settings from YAML file: %s", filePath)
	return parsed.normalized()
}

// normalized restores defaults for values a settings file cleared or set out of range
func (s Settings) normalized() Settings {
	defaults := WithDefaultSettings()
	if s.SystemPrompt == "" {
		s.SystemPrompt = defaults.SystemPrompt
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if s.APIVersion == "" {
		s.APIVersion = defaults.APIVersion
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		s.Temperature = defaults.Temperature
	}
	return s
}

func findSettingsFile(root string) string {
	for _, name := range SettingsFileNames {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && (d.Name() == ".git" || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		for _, name := range SettingsFileNames {
			if d.Name() == name {
				found = path
				return fs.SkipAll
			}
		}
		return nil
	})
	return found
}
