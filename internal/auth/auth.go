package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// Status is the credential state observed after attempting to load and
// revive a persisted token.
type Status int

const (
	NoToken Status = iota
	ValidToken
)

// TokenStore persists the runtime access/refresh token between runs.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
}

// Refresher exchanges an expired token for a fresh one without user interaction.
type Refresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// ConsentFlow obtains a brand-new token by driving the user through the
// provider's consent page.
type ConsentFlow interface {
	Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)
}
