package config

import (
	"fmt"
	"strings"
)

// ConfigError holds the missing variables and validation failures of one config file.
type ConfigError struct {
	Path    string
	Missing []string // ${VAR} references with no value and no default
	Errors  []string // messages from Validate
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "config %s:\n", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s\n", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		fmt.Fprintf(&b, "validation failed (%d):\n", len(e.Errors))
		for _, msg := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// HasErrors reports whether anything was recorded.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
