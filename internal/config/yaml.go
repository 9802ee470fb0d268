// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at path. If path is
// empty it searches default locations ("config.yaml", "tuner.yaml") and
// falls back to built-in defaults when no file exists. Environment
// overrides apply after the file, and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range []string{"config.yaml", "tuner.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides layers TUNER_* environment variables over the current
// values. Unparseable values are ignored rather than fatal.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("TUNER_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Verbose = bVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_A4"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.A4 = fVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.WSEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_WS_PORT"); ok {
		c.WSPort = val
	}
	if val, ok := os.LookupEnv("TUNER_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("TUNER_UDP_TARGET"); ok {
		c.UDPTarget = val
	}
}
