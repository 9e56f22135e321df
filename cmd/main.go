package main

import (
	"context"

	"gmail-auto-labeler/internal/auth"
	"gmail-auto-labeler/internal/config"
	"gmail-auto-labeler/internal/gmailapi"
	"gmail-auto-labeler/internal/labeler"
	"gmail-auto-labeler/internal/logging"
)

// Fixed relative locations; the program takes no flags and is expected to
// run from its own directory under a task scheduler.
const (
	configPath      = "config.yaml"
	credentialsPath = "creds/credentials.json"
	tokenPath       = "creds/token.json"
	logsDir         = "logs"
)

func main() {
	if path, err := logging.AddRunFile(logsDir); err != nil {
		logging.Log.Warnf("Could not open run log file: %v", err)
	} else {
		logging.Log.Infof("Logging to %s", path)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Log.Fatalf("Error reading configuration file: %v", err)
	}

	if len(cfg.Rules) == 0 {
		logging.Log.Warn("No sender-label rules configured, nothing to do")
		return
	}

	logging.Log.Infof("Starting labeling run: %d rules, %d day lookback", len(cfg.Rules), cfg.LookbackDays)

	ctx := context.Background()

	oauthConfig, err := auth.LoadClientConfig(credentialsPath)
	if err != nil {
		logging.Log.Fatalf("Error loading client credentials: %v", err)
	}

	manager := auth.NewManager(oauthConfig, &auth.FileStore{Path: tokenPath}, &auth.LocalServerFlow{})
	token, err := manager.Token(ctx)
	if err != nil {
		logging.Log.Fatalf("Gmail authentication failed: %v", err)
	}

	client, err := gmailapi.NewAPIClient(ctx, oauthConfig, token)
	if err != nil {
		logging.Log.Fatalf("Error creating Gmail client: %v", err)
	}

	stats := labeler.NewService(client, cfg).Run(ctx)
	logging.Log.Infof("Run complete: %d labeled, %d already labeled, %d message failures, %d rule failures",
		stats.Applied, stats.AlreadyLabeled, stats.FailedMessages, stats.FailedRules)
}
