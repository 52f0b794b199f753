package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ApplyPolicyFile overlays security settings from a YAML file onto the
// env-derived defaults. Missing fields keep their defaults; a zero Requests
// value leaves the corresponding limit untouched.
func (c *Config) ApplyPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read security policy file: %w", err)
	}

	var overrides SecurityConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse security policy file: %w", err)
	}

	if overrides.HTTPSOnly {
		c.Security.HTTPSOnly = true
	}
	if len(overrides.AllowedOrigins) > 0 {
		c.Security.AllowedOrigins = overrides.AllowedOrigins
	}
	if overrides.PublicIPLimit.Requests > 0 {
		c.Security.PublicIPLimit = overrides.PublicIPLimit
	}
	if overrides.AuthIPLimit.Requests > 0 {
		c.Security.AuthIPLimit = overrides.AuthIPLimit
	}
	if overrides.UserLimit.Requests > 0 {
		c.Security.UserLimit = overrides.UserLimit
	}

	return nil
}
