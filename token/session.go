package token

import "time"

// TokenEndpoint is the OAuth2 token endpoint path on a badgr server.
const TokenEndpoint = "/o/token"

// Session holds the authenticated state for one client instance. There is
// exactly one Session per Manager and it is only mutated by a successful
// token exchange.
type Session struct {
	// BaseURL is the badgr server's URL, without a trailing slash.
	BaseURL string

	// ClientID identifies the OAuth2 client. Badgr's public clients carry
	// no client secret, so it is the only client credential sent.
	ClientID string

	// Scope is the space-separated OAuth2 scope string requested on every
	// token exchange.
	Scope string

	// AccessToken is the current bearer token.
	AccessToken string

	// RefreshToken is the current refresh token. Single use - the server
	// rotates it on every refresh grant.
	RefreshToken string

	// ExpiresAt is when the access token expires. Nil means the token's
	// lifetime is unknown (supplied directly by the caller) and the
	// session is never auto-refreshed.
	ExpiresAt *time.Time
}
