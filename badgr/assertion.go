package badgr

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-badgr-client/gateway"
	"github.com/jrsteele09/go-badgr-client/internal/utils"
	"github.com/pkg/errors"
)

const (
	assertionEndpoint          = "/v2/assertions"
	backpackAssertionsEndpoint = "/v2/backpack/assertions"

	// issuedOnFormat is the timestamp layout the server expects for the
	// issuedOn field.
	issuedOnFormat = "2006-01-02 15:04:05Z"
)

// Evidence documents how a badge was earned.
type Evidence struct {
	URL       string `json:"url,omitempty"`
	Narrative string `json:"narrative,omitempty"`
}

// AssertionParams describes an assertion to issue. The badge is referenced
// either directly via BadgeID, or via BadgeName plus IssuerID when the
// client's badge-name index is enabled.
type AssertionParams struct {
	RecipientEmail string

	BadgeID   string
	IssuerID  string
	BadgeName string

	Narrative string
	Evidence  []Evidence
	// Expires is an ISO8601 formatted datetime.
	Expires string
	// IssuedOn overrides the issue date; defaults to the current UTC time.
	IssuedOn string
	// Notify controls whether the recipient is emailed. Defaults to true.
	Notify *bool
}

// Assertion is a record of a badge issued to one recipient.
type Assertion struct {
	entityCore
}

// NewAssertion creates an Assertion bound to the given entity id. Pass an
// empty eid for an unbound assertion that will be created via Create.
func NewAssertion(c *Client, eid string) *Assertion {
	return &Assertion{entityCore{client: c, endpoint: assertionEndpoint, id: eid}}
}

// Create issues a badge to a single recipient and populates this entity
// from the server's response. Without a resolvable badge id the call fails
// before any request is made; with unique badge names enabled the id may be
// resolved from (BadgeName, IssuerID), which requires the index to contain
// the badge (see Client.LoadBadgeNames).
func (a *Assertion) Create(ctx context.Context, params AssertionParams) error {
	badgeEID := params.BadgeID
	if badgeEID == "" {
		if eid, ok := a.client.BadgeIDFromName(params.BadgeName, params.IssuerID); ok {
			badgeEID = eid
		}
	}
	if badgeEID == "" {
		return errors.Wrap(ErrMissingBadgeReference, "[Assertion.Create]")
	}

	evidence := params.Evidence
	if evidence == nil {
		evidence = []Evidence{}
	}
	issuedOn := params.IssuedOn
	if issuedOn == "" {
		issuedOn = a.client.nowFunc().UTC().Format(issuedOnFormat)
	}

	payload := map[string]any{
		"recipient": map[string]any{
			"type":     "email",
			"identity": params.RecipientEmail,
		},
		"narrative": nullable(params.Narrative),
		"evidence":  evidence,
		"notify":    utils.ValueOr(params.Notify, true),
		"expires":   nullable(params.Expires),
		"issuedOn":  issuedOn,
	}

	envelope, err := a.client.gw.Do(ctx, gateway.Request{
		Endpoint: badgeClassEndpoint + "/" + badgeEID + "/assertions",
		Method:   http.MethodPost,
		Body:     payload,
	})
	if err != nil {
		return err
	}

	item, err := firstResult(envelope)
	if err != nil {
		return err
	}
	a.setData(item)
	return nil
}

// Revoke revokes this assertion with the given reason.
func (a *Assertion) Revoke(ctx context.Context, reason string) (*gateway.Envelope, error) {
	if err := a.requireID("Assertion.Revoke"); err != nil {
		return nil, err
	}

	return a.client.gw.Do(ctx, gateway.Request{
		Endpoint: a.entityEndpoint(),
		Method:   http.MethodDelete,
		Body:     map[string]string{"revocationReason": reason},
	})
}
