package models

// Config represents the application configuration
type Config struct {
	Rules        []Rule `yaml:"rules"`
	LookbackDays int    `yaml:"lookbackDays"`
}

// Rule maps a sender address to the label its messages should carry
type Rule struct {
	Sender string `yaml:"sender"`
	Label  string `yaml:"label"`
}
