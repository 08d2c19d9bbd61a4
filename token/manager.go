// Package token manages the OAuth2 session of a badgr client: it performs
// password and refresh-token grants against the server's token endpoint and
// tracks bearer token expiry.
//
// A Manager holds exactly one Session and is not safe for concurrent use.
// Callers issuing concurrent API calls must serialize access themselves.
package token

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Manager owns the OAuth2 credentials and the current Session.
type Manager struct {
	session Session
	client  *http.Client
	log     zerolog.Logger
	nowFunc func() time.Time
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithHTTPClient sets the HTTP client used for token exchanges.
func WithHTTPClient(client *http.Client) ManagerOption {
	return func(m *Manager) {
		m.client = client
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// New creates a Manager with no token. Authenticate must be called before
// the session can be used.
func New(baseURL, clientID, scope string, options ...ManagerOption) *Manager {
	m := &Manager{
		session: Session{
			BaseURL:  baseURL,
			ClientID: clientID,
			Scope:    scope,
		},
		log:     zerolog.Nop(),
		nowFunc: time.Now,
	}

	for _, opt := range options {
		opt(m)
	}
	return m
}

// NewFromToken creates a Manager around an externally obtained bearer token.
// No expiry is tracked for such sessions, so they are never auto-refreshed:
// the caller supplied a long-lived or externally managed token.
func NewFromToken(baseURL, clientID, scope, accessToken, refreshToken string, options ...ManagerOption) *Manager {
	m := New(baseURL, clientID, scope, options...)
	m.session.AccessToken = accessToken
	m.session.RefreshToken = refreshToken
	return m
}

// Session returns a copy of the current session state.
func (m *Manager) Session() Session {
	return m.session
}

// AccessToken returns the current bearer token, empty if unauthenticated.
func (m *Manager) AccessToken() string {
	return m.session.AccessToken
}

// NeedsRefresh reports whether the access token has expired. Sessions with
// no expiry tracking never need a refresh.
func (m *Manager) NeedsRefresh() bool {
	return m.session.ExpiresAt != nil && m.session.ExpiresAt.Before(m.nowFunc())
}

// Authenticate performs a token exchange and replaces the session state.
// With both username and password it runs a password grant, otherwise a
// refresh-token grant with the stored refresh token. The session is only
// mutated after a successful exchange, so a failed one leaves the previous
// state intact.
func (m *Manager) Authenticate(ctx context.Context, username, password string) error {
	conf := m.oauthConfig()
	if m.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)
	}

	var (
		tok *oauth2.Token
		err error
	)
	switch {
	case username != "" && password != "":
		tok, err = conf.PasswordCredentialsToken(ctx, username, password)
	case m.session.RefreshToken != "":
		tok, err = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: m.session.RefreshToken}).Token()
	default:
		return errors.Wrap(ErrNoCredentials, "[Manager.Authenticate]")
	}
	if err != nil {
		return errors.Wrap(err, "[Manager.Authenticate] token exchange")
	}
	if tok.AccessToken == "" {
		return errors.Wrap(ErrNoAccessToken, "[Manager.Authenticate] token exchange")
	}

	m.session.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		// The old refresh token is single use and now discarded.
		m.session.RefreshToken = tok.RefreshToken
	}
	if tok.Expiry.IsZero() {
		m.session.ExpiresAt = nil
	} else {
		expiry := tok.Expiry
		m.session.ExpiresAt = &expiry
	}

	m.log.Debug().
		Time("expires_at", tok.Expiry).
		Msg("token exchange complete")
	return nil
}

// Introspect decodes the claims of the current bearer token without
// verifying its signature. The badgr server holds the signing keys, so this
// is a diagnostic aid, not a validity check.
func (m *Manager) Introspect() (jwt.MapClaims, error) {
	if m.session.AccessToken == "" {
		return nil, errors.Wrap(ErrNoAccessToken, "[Manager.Introspect]")
	}

	tok, _, err := jwt.NewParser().ParseUnverified(m.session.AccessToken, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Introspect] parse token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("[Manager.Introspect] error extracting claims")
	}
	return claims, nil
}

func (m *Manager) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: m.session.ClientID,
		Scopes:   strings.Fields(m.session.Scope),
		Endpoint: oauth2.Endpoint{
			TokenURL:  m.session.BaseURL + TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
