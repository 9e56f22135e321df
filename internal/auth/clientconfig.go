package auth

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// LoadClientConfig reads the operator-provisioned client identity file and
// builds the OAuth configuration with the modify scope the labeler needs.
// If the scope ever changes, the persisted token must be deleted.
func LoadClientConfig(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading client credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client credentials file: %w", err)
	}
	return config, nil
}
