package config

import (
	"gopkg.in/yaml.v3"
)

// Dump renders the effective configuration as YAML with the API key
// redacted, for `tern config`.
func (c *ConfigSchema) Dump() ([]byte, error) {
	shown := *c
	if shown.Upstream.APIKey != "" {
		shown.Upstream.APIKey = "[redacted]"
	}
	return yaml.Marshal(shown)
}
