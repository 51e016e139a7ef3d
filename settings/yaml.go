package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML reads a flat YAML mapping of settings. Top-level keys are
// normalized; nested values are kept as decoded.
func ParseYAML(b []byte) (Map, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("settings: parse yaml: %w", err)
	}
	out := make(Map, len(raw))
	for k, v := range raw {
		out[Normalize(k)] = v
	}
	return out, nil
}

// LoadYAML reads settings from a YAML file.
func LoadYAML(path string) (Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return ParseYAML(b)
}
