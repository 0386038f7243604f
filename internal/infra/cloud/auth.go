// Package cloud wraps the Google Cloud calls the service depends on: obtaining
// an OAuth2 access token from configured credentials and the Translation API.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultScopes is requested when no scope is configured.
var DefaultScopes = []string{"https://www.googleapis.com/auth/cloud-platform"}

var (
	// ErrMissingAPIKey is returned by Translate when no key is configured.
	ErrMissingAPIKey = errors.New("google translate api key is not configured")

	// ErrInvalidToken is returned when the token source yields an expired or empty token.
	ErrInvalidToken = errors.New("credentials produced an invalid token")
)

// AuthChecker verifies that service-account or application-default
// credentials can mint an access token.
//
// Credentials are resolved on the first check and kept after the first
// success, so a missing credentials file fails the check instead of startup.
type AuthChecker struct {
	credentialsFile string
	scopes          []string
	resolve         func(ctx context.Context) (*google.Credentials, error)

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewAuthChecker creates a checker. An empty credentialsFile uses
// application-default credentials.
func NewAuthChecker(credentialsFile string, scopes ...string) *AuthChecker {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	a := &AuthChecker{credentialsFile: credentialsFile, scopes: scopes}
	a.resolve = a.findCredentials
	return a
}

// NewAuthCheckerFromSource creates a checker over an existing token source.
func NewAuthCheckerFromSource(ts oauth2.TokenSource) *AuthChecker {
	return &AuthChecker{source: ts}
}

// CheckToken obtains a token and reports whether it is usable. Credential
// discovery and the token call both run under ctx's deadline.
func (a *AuthChecker) CheckToken(ctx context.Context) error {
	type result struct {
		tok *oauth2.Token
		err error
	}
	// Neither discovery on GCE nor Token honours ctx; the deadline is enforced here.
	ch := make(chan result, 1)
	go func() {
		ts, err := a.tokenSource(ctx)
		if err != nil {
			ch <- result{err: err}
			return
		}
		tok, err := ts.Token()
		if err != nil {
			err = fmt.Errorf("obtain token: %w", err)
		}
		ch <- result{tok, err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("obtain token: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		if !r.tok.Valid() {
			return ErrInvalidToken
		}
		return nil
	}
}

func (a *AuthChecker) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.source != nil {
		return a.source, nil
	}

	// The stored source refreshes tokens long after this check returns.
	creds, err := a.resolve(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	a.source = oauth2.ReuseTokenSource(nil, creds.TokenSource)
	return a.source, nil
}

func (a *AuthChecker) findCredentials(ctx context.Context) (*google.Credentials, error) {
	if a.credentialsFile == "" {
		creds, err := google.FindDefaultCredentials(ctx, a.scopes...)
		if err != nil {
			return nil, fmt.Errorf("find default credentials: %w", err)
		}
		return creds, nil
	}

	data, err := os.ReadFile(a.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, a.scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return creds, nil
}
