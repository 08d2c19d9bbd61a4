package badgr

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-badgr-client/gateway"
	"github.com/pkg/errors"
)

const badgeClassEndpoint = "/v2/badgeclasses"

// Alignment links a badge to an external framework or standard.
type Alignment struct {
	TargetName        string `json:"targetName,omitempty"`
	TargetURL         string `json:"targetUrl,omitempty"`
	TargetDescription string `json:"targetDescription,omitempty"`
	TargetFramework   string `json:"targetFramework,omitempty"`
	TargetCode        string `json:"targetCode,omitempty"`
}

// BadgeExpiry is the default validity period of assertions of a badge.
type BadgeExpiry struct {
	Amount   string `json:"amount"`
	Duration string `json:"duration"`
}

// BadgeClassParams describes a badgeclass to create. At least one of
// CriteriaText and CriteriaURL is required.
type BadgeClassParams struct {
	Name        string
	Image       string // data-URI string, see EncodeImage
	Description string
	IssuerID    string

	CriteriaText string
	CriteriaURL  string
	Alignments   []Alignment
	Tags         []string
	Expires      *BadgeExpiry
}

// BadgeClass is a badge definition, issuable to recipients any number of
// times.
type BadgeClass struct {
	entityCore
}

// NewBadgeClass creates a BadgeClass bound to the given entity id. Pass an
// empty eid for an unbound badgeclass that will be created via Create.
func NewBadgeClass(c *Client, eid string) *BadgeClass {
	return &BadgeClass{entityCore{client: c, endpoint: badgeClassEndpoint, id: eid}}
}

// NewBadgeClassByName creates a BadgeClass addressed by its name and issuer
// instead of an entity id, resolved through the client's badge-name index.
// When the name is not in the index the badgeclass stays unbound.
func NewBadgeClassByName(c *Client, badgeName, issuerEID string) *BadgeClass {
	badge := NewBadgeClass(c, "")
	if eid, ok := c.BadgeIDFromName(badgeName, issuerEID); ok {
		badge.id = eid
	}
	return badge
}

// Create registers a new badgeclass and populates this entity from the
// server's response. With unique badge names enabled, a name already known
// for the issuer is rejected before any call is made, and the new badge is
// registered in the index on success.
func (b *BadgeClass) Create(ctx context.Context, params BadgeClassParams) error {
	if params.CriteriaText == "" && params.CriteriaURL == "" {
		return errors.Wrap(ErrMissingCriteria, "[BadgeClass.Create]")
	}

	if b.client.uniqueBadgeNames {
		if existing, ok := b.client.BadgeIDFromName(params.Name, params.IssuerID); ok {
			return errors.Wrapf(ErrDuplicateBadgeName, "%q already exists as %s", params.Name, existing)
		}
	}

	alignments := params.Alignments
	if alignments == nil {
		alignments = []Alignment{}
	}
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	payload := map[string]any{
		"name":          params.Name,
		"image":         params.Image,
		"issuer":        params.IssuerID,
		"description":   params.Description,
		"criteria_text": nullable(params.CriteriaText),
		"criteria_url":  nullable(params.CriteriaURL),
		"alignments":    alignments,
		"tags":          tags,
		"expires":       params.Expires,
	}

	envelope, err := b.client.gw.Do(ctx, gateway.Request{
		Endpoint: badgeClassEndpoint,
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
	b.setData(item)

	b.client.saveBadgeName(b)
	return nil
}

// FetchAssertions lists the assertions issued for this badgeclass.
func (b *BadgeClass) FetchAssertions(ctx context.Context) ([]*Assertion, error) {
	if err := b.requireID("BadgeClass.FetchAssertions"); err != nil {
		return nil, err
	}

	envelope, err := b.client.gw.Do(ctx, gateway.Request{Endpoint: b.entityEndpoint() + "/assertions"})
	if err != nil {
		return nil, err
	}
	entities, err := b.client.deserialize(envelope.Result)
	if err != nil {
		return nil, err
	}
	return entitiesAs[*Assertion](entities)
}

// Issue creates a new assertion of this badge. Any badge reference fields
// in params are overridden with this badgeclass's id.
func (b *BadgeClass) Issue(ctx context.Context, params AssertionParams) (*Assertion, error) {
	if err := b.requireID("BadgeClass.Issue"); err != nil {
		return nil, err
	}

	params.BadgeID = b.id
	assertion := NewAssertion(b.client, "")
	if err := assertion.Create(ctx, params); err != nil {
		return nil, err
	}
	return assertion, nil
}
