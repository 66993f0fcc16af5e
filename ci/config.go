package ci

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bitrise-io/bitrise-plugins-build-summary/common"
)

// Environment variables exported by the CI step
const (
	EnvEndpoint   = "AOAI_ENDPOINT"
	EnvDeployment = "AOAI_DEPLOYMENT"
	EnvKey        = "AOAI_KEY"
	EnvStatus     = "STATUS"
	EnvContext    = "CONTEXT"
)

// DefaultContext is used when the step did not export any error context
const DefaultContext = "(none)"

// LookupFunc reads a named value from the execution environment
type LookupFunc func(key string) (string, bool)

// Config is read once at process start and passed by value afterwards.
type Config struct {
	Endpoint   string
	Deployment string
	APIKey     string
	Status     string
	Context    string
}

// String keeps the API key out of log lines
func (c Config) String() string {
	return fmt.Sprintf("{Endpoint:%s Deployment:%s APIKey:%s Status:%s Context:%s}",
		c.Endpoint, c.Deployment, redact(c.APIKey), c.Status, common.Preview(c.Context, 60))
}

// LoadConfigFromEnv reads the configuration from the process environment
func LoadConfigFromEnv() (Config, error) {
	return LoadConfig(os.LookupEnv)
}

// LoadConfig validates the required settings. Context is always populated, even when
// required settings are missing, so the fallback can still inspect the build output.
func LoadConfig(lookup LookupFunc) (Config, error) {
	cfg := Config{Context: DefaultContext}
	if ctx, ok := lookup(EnvContext); ok && strings.TrimSpace(ctx) != "" {
		cfg.Context = ctx
	}

	var missing []string
	required := func(name string) string {
		value, _ := lookup(name)
		value = strings.TrimSpace(value)
		if value == "" {
			missing = append(missing, name)
		}
		return value
	}

	cfg.Endpoint = strings.TrimRight(required(EnvEndpoint), "/")
	cfg.Deployment = required(EnvDeployment)
	cfg.APIKey = required(EnvKey)
	cfg.Status = required(EnvStatus)

	if len(missing) > 0 {
		return cfg, common.ConfigError(missing...)
	}
	return cfg, nil
}

// EnvironmentNames lists the names of the variables present in the environment, sorted.
// Values are never returned.
func EnvironmentNames(environ []string) []string {
	names := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
