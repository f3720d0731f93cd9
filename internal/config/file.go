package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// applyFile reads a flat YAML document of environment keys, for example
//
//	DATABASE_URL: postgres://localhost:5432/dashlog
//	SEND_INTERVAL_SECONDS: 3
//
// and exports every key that is not already set in the process environment.
func applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	for key, value := range values {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" || value == nil {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(value)); err != nil {
			return fmt.Errorf("apply %s: %w", key, err)
		}
	}
	return nil
}
