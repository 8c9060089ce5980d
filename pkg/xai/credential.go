package xai

import (
	"fmt"
	"os"
	"strings"

	"github.com/rhuss/xsearch/pkg/api"
)

// DefaultAPIKeyEnv is the environment variable holding the xAI API key.
const DefaultAPIKeyEnv = "XAI_API_KEY"

// ResolveCredential looks up the API key named by name. Unset and blank
// values are a configuration error. The key is read on every call and
// never cached.
func ResolveCredential(lookup func(string) (string, bool), name string) (string, error) {
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", api.NewConfigurationError(
			fmt.Sprintf("%s environment variable is not set", name))
	}
	return strings.TrimSpace(v), nil
}

// EnvCredential returns a resolver bound to the process environment.
func EnvCredential(name string) func() (string, error) {
	return func() (string, error) {
		return ResolveCredential(os.LookupEnv, name)
	}
}
