package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"gmail-auto-labeler/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// LocalServerFlow implements the installed-application consent flow: it
// listens on an ephemeral loopback port, sends the user to the provider's
// consent page, and exchanges the authorization code delivered to the
// redirect for a token.
type LocalServerFlow struct {
	OpenURL func(url string) error // opens the consent page; defaults to the system browser
	Timeout time.Duration          // how long to wait for the callback; defaults to 5 minutes
}

type callbackResult struct {
	code string
	err  error
}

func (f *LocalServerFlow) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}

	cfg := *config
	cfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state := uuid.New().String()
	results := make(chan callbackResult, 1)

	server := &http.Server{Handler: callbackHandler(state, results)}
	go func() {
		_ = server.Serve(listener)
	}()
	defer func() {
		_ = server.Close()
	}()

	f.open(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	timeout := f.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		code = res.code
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out waiting for consent callback after %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

// callbackHandler delivers the first real consent callback to results.
// Stray browser requests (favicon and the like) are ignored.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		query := r.URL.Query()
		if query.Get("code") == "" && query.Get("error") == "" {
			http.NotFound(w, r)
			return
		}

		if denied := query.Get("error"); denied != "" {
			http.Error(w, "Authorization failed.", http.StatusBadRequest)
			deliver(results, callbackResult{err: fmt.Errorf("authorization denied: %s", denied)})
			return
		}

		if query.Get("state") != state {
			http.Error(w, "State mismatch.", http.StatusBadRequest)
			deliver(results, callbackResult{err: fmt.Errorf("state mismatch in consent callback")})
			return
		}

		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		deliver(results, callbackResult{code: query.Get("code")})
	})
}

func deliver(results chan<- callbackResult, res callbackResult) {
	select {
	case results <- res:
	default:
	}
}

func (f *LocalServerFlow) open(url string) {
	opener := f.OpenURL
	if opener == nil {
		opener = openBrowser
	}

	if err := opener(url); err != nil {
		logging.Log.Warnf("Could not open browser automatically: %v", err)
		logging.Log.Infof("Visit this URL to authorize the application: %s", url)
		return
	}
	logging.Log.Info("Consent page opened in browser, waiting for authorization")
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
