package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadExclusionsFile reads a YAML (or JSON) list of gift names.
// An empty file yields an empty list.
func LoadExclusionsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exclusions file %s: %w", path, err)
	}

	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse exclusions file %s: %w", path, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// WriteExclusionsFile writes names as a YAML list.
func WriteExclusionsFile(path string, names []string) error {
	data, err := yaml.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode exclusions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write exclusions file %s: %w", path, err)
	}
	return nil
}
