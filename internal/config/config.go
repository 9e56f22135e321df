package config

import (
	"fmt"
	"os"

	"gmail-auto-labeler/internal/models"

	"gopkg.in/yaml.v2"
)

// Load reads the configuration from the specified YAML file and returns a Config struct
func Load(filepath string) (*models.Config, error) {
	configFile, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, err
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate rejects configurations the labeling run cannot act on.
// An empty rule list is allowed; the caller decides whether to proceed.
func validate(config *models.Config) error {
	if config.LookbackDays <= 0 {
		return fmt.Errorf("lookbackDays must be a positive integer, got %d", config.LookbackDays)
	}

	seen := make(map[string]bool, len(config.Rules))
	for i, rule := range config.Rules {
		if rule.Sender == "" {
			return fmt.Errorf("rule %d: sender is empty", i)
		}
		if rule.Label == "" {
			return fmt.Errorf("rule %d: label is empty for sender %s", i, rule.Sender)
		}
		if seen[rule.Sender] {
			return fmt.Errorf("duplicate sender in configuration: %s", rule.Sender)
		}
		seen[rule.Sender] = true
	}

	return nil
}
