package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func fakeTokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if code := r.FormValue("code"); code != "test-code" {
			http.Error(w, fmt.Sprintf("unexpected code %q", code), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"granted","token_type":"Bearer","refresh_token":"keeper","expires_in":3600}`)
	}))
}

func flowConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example.com/o/oauth2/auth",
			TokenURL: tokenURL,
		},
	}
}

// redirectVisitor stands in for the user's browser: it follows the consent
// URL's redirect_uri straight back to the local listener.
func redirectVisitor(t *testing.T, mutate func(q url.Values)) func(string) error {
	t.Helper()

	return func(authURL string) error {
		go func() {
			parsed, err := url.Parse(authURL)
			if err != nil {
				t.Errorf("Failed to parse consent URL: %v", err)
				return
			}

			q := parsed.Query()
			callback := url.Values{}
			callback.Set("state", q.Get("state"))
			callback.Set("code", "test-code")
			if mutate != nil {
				mutate(callback)
			}

			resp, err := http.Get(q.Get("redirect_uri") + "?" + callback.Encode())
			if err != nil {
				t.Errorf("Callback request failed: %v", err)
				return
			}
			_ = resp.Body.Close()
		}()
		return nil
	}
}

func TestLocalServerFlow_Authorize(t *testing.T) {
	tokenSrv := fakeTokenEndpoint(t)
	defer tokenSrv.Close()

	flow := &LocalServerFlow{
		Timeout: 5 * time.Second,
		OpenURL: redirectVisitor(t, nil),
	}

	token, err := flow.Authorize(context.Background(), flowConfig(tokenSrv.URL))
	if err != nil {
		t.Fatalf("Authorize() error: %v", err)
	}

	if token.AccessToken != "granted" {
		t.Errorf("Expected access token 'granted', got '%s'", token.AccessToken)
	}

	if token.RefreshToken != "keeper" {
		t.Errorf("Expected refresh token 'keeper', got '%s'", token.RefreshToken)
	}
}

func TestLocalServerFlow_StateMismatch(t *testing.T) {
	tokenSrv := fakeTokenEndpoint(t)
	defer tokenSrv.Close()

	flow := &LocalServerFlow{
		Timeout: 5 * time.Second,
		OpenURL: redirectVisitor(t, func(q url.Values) {
			q.Set("state", "forged")
		}),
	}

	if _, err := flow.Authorize(context.Background(), flowConfig(tokenSrv.URL)); err == nil {
		t.Error("Expected error for forged state parameter")
	}
}

func TestLocalServerFlow_ConsentDenied(t *testing.T) {
	tokenSrv := fakeTokenEndpoint(t)
	defer tokenSrv.Close()

	flow := &LocalServerFlow{
		Timeout: 5 * time.Second,
		OpenURL: redirectVisitor(t, func(q url.Values) {
			q.Del("code")
			q.Set("error", "access_denied")
		}),
	}

	if _, err := flow.Authorize(context.Background(), flowConfig(tokenSrv.URL)); err == nil {
		t.Error("Expected error when the user denies consent")
	}
}

func TestLocalServerFlow_Timeout(t *testing.T) {
	flow := &LocalServerFlow{
		Timeout: 50 * time.Millisecond,
		OpenURL: func(string) error { return nil },
	}

	if _, err := flow.Authorize(context.Background(), flowConfig("http://127.0.0.1:0/token")); err == nil {
		t.Error("Expected timeout error when no callback arrives")
	}
}
