package auth

import (
	"context"
	"fmt"

	"gmail-auto-labeler/internal/logging"

	"golang.org/x/oauth2"
)

type Manager struct {
	config    *oauth2.Config
	store     TokenStore
	flow      ConsentFlow
	refresher Refresher
}

// NewManager creates a Manager that loads tokens from the given store and
// falls back to the given consent flow when no usable token exists
func NewManager(config *oauth2.Config, store TokenStore, flow ConsentFlow) *Manager {
	return &Manager{
		config:    config,
		store:     store,
		flow:      flow,
		refresher: &oauthRefresher{config: config},
	}
}

// Token returns a usable credential, refreshing or bootstrapping as needed.
// An error means no credential could be obtained at all and the run must abort.
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	token, status := m.load(ctx)

	if status == NoToken {
		logging.Log.Info("No valid credentials available, initiating consent flow")

		fresh, err := m.flow.Authorize(ctx, m.config)
		if err != nil {
			return nil, fmt.Errorf("authorization flow: %w", err)
		}
		token = fresh
		m.persist(token)
	}

	return token, nil
}

// load attempts to revive the persisted token: use it if still valid,
// refresh it silently if expired with a refresh token on hand.
func (m *Manager) load(ctx context.Context) (*oauth2.Token, Status) {
	token, err := m.store.Load()
	if err != nil || token == nil {
		logging.Log.Infof("No stored credentials: %v", err)
		return nil, NoToken
	}

	if token.Valid() {
		logging.Log.Info("Valid credentials found")
		return token, ValidToken
	}

	if token.RefreshToken == "" {
		logging.Log.Info("Stored credentials expired with no refresh token")
		return nil, NoToken
	}

	logging.Log.Info("Refreshing expired credentials")
	refreshed, err := m.refresher.Refresh(ctx, token)
	if err != nil {
		logging.Log.Warnf("Token refresh failed: %v", err)
		return nil, NoToken
	}

	m.persist(refreshed)
	return refreshed, ValidToken
}

// persist failures are not fatal: the in-memory token is still good for
// this run, the next run just re-authenticates.
func (m *Manager) persist(token *oauth2.Token) {
	if err := m.store.Save(token); err != nil {
		logging.Log.Warnf("Error saving credentials: %v", err)
		return
	}
	logging.Log.Info("Credentials saved")
}

type oauthRefresher struct {
	config *oauth2.Config
}

func (r *oauthRefresher) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	refreshed, err := r.config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, err
	}
	// TokenSource drops the refresh token when the provider doesn't rotate it
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	return refreshed, nil
}
