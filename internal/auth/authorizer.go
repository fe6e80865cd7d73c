package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/arorarohan/strava-data-analysis/pkg"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrAuthorizationTimeout - the user did not complete the browser consent
// within the configured timeout; rerunning the flow is the only recovery.
var ErrAuthorizationTimeout = errors.New("timed out waiting for the authorization redirect")

// TokenExchangeError - strava rejected the code / client keys / refresh token.
type TokenExchangeError struct {
	Payload string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange rejected: %s", e.Payload)
}

const successPage = `<html><body>
<h1>Authorization Successful!</h1>
<p>You can close this window and return to your terminal.</p>
</body></html>`

type NewAuthorizerParams struct {
	Store        *FileStore
	AuthBaseURL  string
	RedirectPort int
	Timeout      time.Duration
	// OpenURL opens the authorization URL for the user; leave nil
	// to use the platform browser opener
	OpenURL func(url string) error
	// RandStateGenerator overridable for tests
	RandStateGenerator func() string
	// Now overridable for tests; leave nil to use time.Now
	Now func() time.Time
}

// Authorizer drives the three-legged authorization-code flow:
// unauthenticated -> pending authorization (local listener waiting for the
// redirect) -> authorized (tokens exchanged and persisted in the store).
type Authorizer struct {
	store              *FileStore
	authBaseURL        string
	redirectPort       int
	timeout            time.Duration
	openURL            func(url string) error
	randStateGenerator func() string
	now                func() time.Time
}

func NewAuthorizer(params NewAuthorizerParams) *Authorizer {
	a := &Authorizer{
		store:              params.Store,
		authBaseURL:        params.AuthBaseURL,
		redirectPort:       params.RedirectPort,
		timeout:            params.Timeout,
		openURL:            params.OpenURL,
		randStateGenerator: params.RandStateGenerator,
		now:                params.Now,
	}
	if a.openURL == nil {
		a.openURL = openBrowser
	}
	if a.randStateGenerator == nil {
		a.randStateGenerator = GenerateStateString
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

func GenerateStateString() string {
	s, err := pkg.GenerateRandomString(16)
	if err != nil {
		log.Fatalf("generate random state: %s", err)
	}
	return s
}

func (a *Authorizer) oauthConfig(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d", a.redirectPort),
		Scopes:       []string{"activity:read_all"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  a.authBaseURL + "/oauth/authorize",
			TokenURL: a.authBaseURL + "/oauth/token",
		},
	}
}

// Authorize runs the full authorization-code flow and persists the
// resulting tokens. It blocks until the redirect is captured, the timeout
// expires, or ctx is cancelled.
func (a *Authorizer) Authorize(ctx context.Context) (Credentials, error) {
	creds, err := a.store.Load()
	if err != nil {
		return Credentials{}, err
	}

	conf := a.oauthConfig(creds)
	state := a.randStateGenerator()
	authURL := conf.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))

	code, err := a.captureAuthCode(ctx, authURL, state)
	if err != nil {
		return Credentials{}, err
	}
	log.Debugf("authorization code captured, exchanging for tokens")

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return Credentials{}, asTokenExchangeError(err)
	}

	creds = withToken(creds, token)
	if err := a.store.Save(creds); err != nil {
		return Credentials{}, fmt.Errorf("save credentials: %w", err)
	}

	return creds, nil
}

// Refresh exchanges the refresh token for a fresh access token
// and persists the updated credentials.
func (a *Authorizer) Refresh(ctx context.Context, creds Credentials) (Credentials, error) {
	if creds.RefreshToken == "" {
		return Credentials{}, &TokenExchangeError{Payload: "no refresh token available"}
	}

	conf := a.oauthConfig(creds)
	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		return Credentials{}, asTokenExchangeError(err)
	}

	creds = withToken(creds, token)
	if err := a.store.Save(creds); err != nil {
		return Credentials{}, fmt.Errorf("save credentials: %w", err)
	}

	return creds, nil
}

// EnsureToken returns credentials holding a usable access token:
// the stored one if still valid, otherwise refreshed, otherwise obtained
// via a full authorization flow.
func (a *Authorizer) EnsureToken(ctx context.Context) (Credentials, error) {
	creds, err := a.store.Load()
	if err != nil {
		return Credentials{}, err
	}

	if creds.HasToken() && !creds.Expired(a.now()) {
		return creds, nil
	}

	if creds.RefreshToken != "" {
		log.Debugln("access token stale, refreshing")
		refreshed, err := a.Refresh(ctx, creds)
		if err == nil {
			return refreshed, nil
		}
		log.Warnf("token refresh failed, full authorization needed: %s", err)
	}

	return a.Authorize(ctx)
}

// captureAuthCode starts a short-lived local listener for the oauth
// redirect, opens the authorization URL, and blocks until a code arrives
// or the timeout expires. The listener serves exactly one authorization
// redirect and is torn down before returning.
func (a *Authorizer) captureAuthCode(ctx context.Context, authURL, state string) (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", a.redirectPort))
	if err != nil {
		return "", fmt.Errorf("start redirect listener on port %d: %w", a.redirectPort, err)
	}

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if st := r.URL.Query().Get("state"); st != state {
			log.Errorf("authorization redirect state mismatch: %q", st)
			http.Error(w, "state mismatch", http.StatusForbidden)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successPage)

		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Errorf("redirect listener: %s", serveErr)
		}
	}()
	defer server.Close()

	fmt.Printf("Opening browser for Strava authorization:\n  %s\n", authURL)
	fmt.Println("Waiting for authorization ...")
	if err := a.openURL(authURL); err != nil {
		log.Warnf("failed to open browser, please open the URL manually: %s", err)
	}

	select {
	case code := <-codeCh:
		return code, nil
	case <-time.After(a.timeout):
		return "", ErrAuthorizationTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func withToken(creds Credentials, token *oauth2.Token) Credentials {
	creds.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		creds.RefreshToken = token.RefreshToken
	}
	// strava reports expires_at directly, as unix seconds
	if expiresAt, ok := token.Extra("expires_at").(float64); ok && expiresAt > 0 {
		creds.ExpiresAt = int64(expiresAt)
	} else if !token.Expiry.IsZero() {
		creds.ExpiresAt = token.Expiry.Unix()
	}
	return creds
}

func asTokenExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &TokenExchangeError{Payload: string(retrieveErr.Body)}
	}
	return &TokenExchangeError{Payload: err.Error()}
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
