package site

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/config"
	"github.com/vadviktor/animefeed/internal/httpx"
	"github.com/vadviktor/animefeed/internal/secrets"
)

// State is the session lifecycle state.
type State int

// Session states. A session moves Unauthenticated → Authenticating →
// Authenticated, or to Failed. It is never refreshed mid-run; an expiry
// after login is a fatal condition, not a retry case.
const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Failed
)

// Session holds the cookie/auth state for the run. Every component
// issues its requests through Client() so the jar is shared; the jar is
// written only by Login.
type Session struct {
	client *httpx.Client
	cfg    *config.Config
	log    *zap.Logger
	state  State
}

// NewSession wraps a client in an unauthenticated session.
func NewSession(client *httpx.Client, cfg *config.Config, log *zap.Logger) *Session {
	return &Session{client: client, cfg: cfg, log: log, state: Unauthenticated}
}

// Client returns the cookie-jarred HTTP client.
func (s *Session) Client() *httpx.Client { return s.client }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Login issues the priming GET followed by the credential POST. The
// priming request picks up the anti-forgery cookies the login form
// depends on.
func (s *Session) Login(ctx context.Context, creds secrets.Credentials) error {
	s.state = Authenticating

	resp, err := s.client.Get(ctx, s.cfg.Site.LoginURL)
	if err != nil {
		s.state = Failed
		return fmt.Errorf("prime login page: %w", err)
	}
	if resp.StatusCode != 200 {
		s.state = Failed
		return fmt.Errorf("prime login page: unexpected status %d", resp.StatusCode)
	}

	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
	}
	resp, err = s.client.PostForm(ctx, s.cfg.Site.LoginURL, form)
	if err != nil {
		s.state = Failed
		return fmt.Errorf("post credentials: %w", err)
	}
	if IsInvalidLogin(resp.Body) {
		s.state = Failed
		return ErrAuthentication
	}
	if IsAccessDenied(resp.Body) {
		s.state = Failed
		return fmt.Errorf("login: %w", ErrAccessDenied)
	}
	if resp.StatusCode != 200 {
		s.state = Failed
		return fmt.Errorf("post credentials: unexpected status %d", resp.StatusCode)
	}

	s.state = Authenticated
	s.log.Info("logged in", zap.String("username", creds.Username))
	return nil
}
