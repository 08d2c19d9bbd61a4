// Package badgr is a client SDK for Open Badges compatible ("badgr") badge
// servers. A Client owns one authenticated OAuth2 session and exposes typed
// operations on issuers, badgeclasses, assertions and backpack collections.
//
// A Client and the entities bound to it share mutable session state (token
// refresh, badge-name index) and are not safe for concurrent use; callers
// issuing concurrent requests must serialize access externally.
package badgr

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-badgr-client/gateway"
	"github.com/jrsteele09/go-badgr-client/internal/utils"
	"github.com/jrsteele09/go-badgr-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the address of a local badgr-server instance.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultScope is the scope string requested when none is configured.
	DefaultScope = "rw:profile rw:issuer rw:backpack"

	// DefaultRevocationReason is used when no reason is given for a
	// bulk revocation.
	DefaultRevocationReason = "revoked by go-badgr-client"

	tokensEndpoint           = "/v2/auth/tokens"
	assertionsRevokeEndpoint = "/v2/assertions/revoke"
	userProfileEndpointV1    = "/v1/user/profile"
)

// Config carries everything needed to construct a Client. Credentials are
// passed explicitly; use internal env helpers or flags in the calling
// application to populate it.
type Config struct {
	// Username and Password perform a password grant at construction.
	// Ignored when Token is set.
	Username string
	Password string

	// ClientID is the OAuth2 client id to connect with. Required.
	ClientID string

	// Scope is the OAuth2 scope string. Defaults to DefaultScope.
	Scope string

	// BaseURL is the badgr server's URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Token, when set, is used as the bearer token directly and no
	// password grant is performed. Such sessions are never auto-refreshed
	// unless RefreshToken is also set and the token later expires
	// server-side.
	Token        string
	RefreshToken string

	// UniqueBadgeNames declares that badge names are unique per issuer,
	// enabling the badge-name index so badges can be addressed by
	// (issuer id, name) instead of entity id. Call LoadBadgeNames to seed
	// the index for an issuer; otherwise only badges created through this
	// client get registered.
	UniqueBadgeNames bool

	// HTTPClient overrides the transport for API calls and token
	// exchanges. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger receives debug logs for every API call. Defaults to a no-op
	// logger.
	Logger *zerolog.Logger
}

// Client is an authenticated connection to one badgr server.
type Client struct {
	gw     *gateway.Gateway
	tokens *token.Manager
	log    zerolog.Logger

	uniqueBadgeNames bool
	// badgeNames maps issuer id -> badge name -> badge id. Entries are
	// never invalidated: renames or deletes done outside this client
	// leave stale mappings behind (last write wins, no TTL).
	badgeNames map[string]map[string]string

	nowFunc func() time.Time
}

// New constructs a Client and, unless a token was supplied directly,
// performs the initial password-grant exchange.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("[badgr.New] client id is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	tokenOpts := []token.ManagerOption{token.WithLogger(logger)}
	if cfg.HTTPClient != nil {
		tokenOpts = append(tokenOpts, token.WithHTTPClient(cfg.HTTPClient))
	}

	var tokens *token.Manager
	if cfg.Token != "" {
		tokens = token.NewFromToken(baseURL, cfg.ClientID, scope, cfg.Token, cfg.RefreshToken, tokenOpts...)
	} else {
		tokens = token.New(baseURL, cfg.ClientID, scope, tokenOpts...)
		if err := tokens.Authenticate(ctx, cfg.Username, cfg.Password); err != nil {
			return nil, errors.Wrap(err, "[badgr.New] authenticate")
		}
	}

	gwOpts := []gateway.Option{gateway.WithLogger(logger)}
	if cfg.HTTPClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(cfg.HTTPClient))
	}

	c := &Client{
		gw:               gateway.New(baseURL, tokens, gwOpts...),
		tokens:           tokens,
		log:              logger,
		uniqueBadgeNames: cfg.UniqueBadgeNames,
		nowFunc:          time.Now,
	}
	if cfg.UniqueBadgeNames {
		c.badgeNames = make(map[string]map[string]string)
	}
	return c, nil
}

// Tokens exposes the client's session manager, e.g. for introspecting the
// current bearer token.
func (c *Client) Tokens() *token.Manager {
	return c.tokens
}

// FetchIssuer gets the Issuer with the given entity id, or all of the
// authenticated user's issuers when eid is empty.
func (c *Client) FetchIssuer(ctx context.Context, eid string) ([]*Issuer, error) {
	entities, err := c.fetchEntities(ctx, issuerEndpoint, eid)
	if err != nil {
		return nil, err
	}
	return entitiesAs[*Issuer](entities)
}

// FetchBadgeClass gets the BadgeClass with the given entity id, or all of
// the authenticated user's badgeclasses when eid is empty.
func (c *Client) FetchBadgeClass(ctx context.Context, eid string) ([]*BadgeClass, error) {
	entities, err := c.fetchEntities(ctx, badgeClassEndpoint, eid)
	if err != nil {
		return nil, err
	}
	return entitiesAs[*BadgeClass](entities)
}

// FetchAssertion gets the Assertion with the given entity id, or the
// authenticated user's backpack assertions when eid is empty.
func (c *Client) FetchAssertion(ctx context.Context, eid string) ([]*Assertion, error) {
	endpoint := backpackAssertionsEndpoint
	if eid != "" {
		endpoint = assertionEndpoint + "/" + eid
	}

	envelope, err := c.gw.Do(ctx, gateway.Request{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	entities, err := c.deserialize(envelope.Result)
	if err != nil {
		return nil, err
	}
	return entitiesAs[*Assertion](entities)
}

// FetchCollection gets the backpack Collection with the given entity id, or
// all of the authenticated user's collections when eid is empty.
func (c *Client) FetchCollection(ctx context.Context, eid string) ([]*Collection, error) {
	entities, err := c.fetchEntities(ctx, collectionEndpoint, eid)
	if err != nil {
		return nil, err
	}
	return entitiesAs[*Collection](entities)
}

// FetchTokens lists the access tokens of the authenticated user. The items
// carry no entityType discriminator, so they are returned raw.
func (c *Client) FetchTokens(ctx context.Context) ([]json.RawMessage, error) {
	envelope, err := c.gw.Do(ctx, gateway.Request{Endpoint: tokensEndpoint})
	if err != nil {
		return nil, err
	}
	return envelope.Result, nil
}

// RevokeAssertions revokes multiple assertions in a single request. The
// request either succeeds or fails as a whole; there are no partial
// revocations.
func (c *Client) RevokeAssertions(ctx context.Context, ids []string, reason string) (*gateway.Envelope, error) {
	if reason == "" {
		reason = DefaultRevocationReason
	}

	payload := make([]map[string]string, 0, len(ids))
	for _, eid := range ids {
		payload = append(payload, map[string]string{
			"entityId":         eid,
			"revocationReason": reason,
		})
	}

	return c.gw.Do(ctx, gateway.Request{
		Endpoint: assertionsRevokeEndpoint,
		Method:   http.MethodPost,
		Body:     payload,
	})
}

// NewUser describes an account to create on the badgr server.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	MarketingOptIn bool
	// AgreedTermsService defaults to true.
	AgreedTermsService *bool
}

// CreateUser creates a badgr account through the v1 profile endpoint. The
// call is unauthenticated.
func (c *Client) CreateUser(ctx context.Context, user NewUser) (*gateway.Envelope, error) {
	if user.Email == "" {
		return nil, errors.Wrap(ErrEmailRequired, "[Client.CreateUser]")
	}
	if user.Password == "" {
		return nil, errors.Wrap(ErrPasswordRequired, "[Client.CreateUser]")
	}

	payload := map[string]any{
		"first_name":           user.FirstName,
		"last_name":            user.LastName,
		"email":                user.Email,
		"password":             user.Password,
		"marketing_opt_in":     user.MarketingOptIn,
		"agreed_terms_service": utils.ValueOr(user.AgreedTermsService, true),
	}

	return c.gw.Do(ctx, gateway.Request{
		Endpoint: userProfileEndpointV1,
		Method:   http.MethodPost,
		Body:     payload,
		SkipAuth: true,
	})
}

// LoadBadgeNames (re)loads the badge-name index for one issuer from the
// server's current badge list.
func (c *Client) LoadBadgeNames(ctx context.Context, issuerEID string) error {
	issuer := NewIssuer(c, issuerEID)
	badges, err := issuer.FetchBadgeClasses(ctx, false)
	if err != nil {
		return errors.Wrap(err, "[Client.LoadBadgeNames]")
	}

	for _, badge := range badges {
		c.saveBadgeName(badge)
	}
	return nil
}

// BadgeIDFromName resolves a badge entity id from its name and issuer.
// Resolution only works with UniqueBadgeNames enabled and only covers
// badges that have been loaded or created through this client.
func (c *Client) BadgeIDFromName(badgeName, issuerEID string) (string, bool) {
	if !c.uniqueBadgeNames || badgeName == "" || issuerEID == "" {
		return "", false
	}
	id, ok := c.badgeNames[issuerEID][badgeName]
	return id, ok
}

// saveBadgeName records a badge under its issuer's name index. Last write
// wins; out-of-band renames or deletes are not detected.
func (c *Client) saveBadgeName(badge *BadgeClass) {
	if !c.uniqueBadgeNames {
		return
	}

	eid := badge.EntityID()
	name, _ := badge.RawData()["name"].(string)
	issuerEID, _ := badge.RawData()["issuer"].(string)
	if eid == "" || name == "" || issuerEID == "" {
		c.log.Error().
			Str("entity_id", eid).
			Msg("badge missing fields, not indexed")
		return
	}

	if c.badgeNames[issuerEID] == nil {
		c.badgeNames[issuerEID] = make(map[string]string)
	}
	c.badgeNames[issuerEID][name] = eid
}

func (c *Client) fetchEntities(ctx context.Context, endpoint, eid string) ([]Entity, error) {
	if eid != "" {
		endpoint = endpoint + "/" + eid
	}

	envelope, err := c.gw.Do(ctx, gateway.Request{Endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	return c.deserialize(envelope.Result)
}
