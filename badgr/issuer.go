package badgr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-badgr-client/gateway"
	"github.com/pkg/errors"
)

const (
	issuerEndpoint        = "/v2/issuers"
	issuerStaffEndpointV1 = "/v1/issuer/issuers/%s/staff"
)

// StaffAction is an operation on an issuer's staff list.
type StaffAction string

const (
	StaffActionAdd    StaffAction = "add"
	StaffActionModify StaffAction = "modify"
	StaffActionRemove StaffAction = "remove"
)

// StaffRole is the role a staff member holds on an issuer.
type StaffRole string

const (
	StaffRoleOwner  StaffRole = "owner"
	StaffRoleEditor StaffRole = "editor"
	StaffRoleStaff  StaffRole = "staff"
)

// Issuer is an organizational entity authorized to issue badges.
type Issuer struct {
	entityCore
}

// NewIssuer creates an Issuer bound to the given entity id. Pass an empty
// eid for an unbound issuer that will be created via Create.
func NewIssuer(c *Client, eid string) *Issuer {
	return &Issuer{entityCore{client: c, endpoint: issuerEndpoint, id: eid}}
}

// Create registers a new issuer and populates this entity from the server's
// response. The email must be one of the authenticated user's verified
// addresses; image is an optional data-URI string (see EncodeImage).
func (i *Issuer) Create(ctx context.Context, name, description, email, url, image string) error {
	payload := map[string]any{
		"name":        name,
		"description": description,
		"email":       email,
		"url":         url,
		"image":       nullable(image),
	}

	envelope, err := i.client.gw.Do(ctx, gateway.Request{
		Endpoint: issuerEndpoint,
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
	i.setData(item)
	return nil
}

// FetchAssertions lists the assertions issued by this issuer.
func (i *Issuer) FetchAssertions(ctx context.Context) ([]*Assertion, error) {
	if err := i.requireID("Issuer.FetchAssertions"); err != nil {
		return nil, err
	}

	envelope, err := i.client.gw.Do(ctx, gateway.Request{Endpoint: i.entityEndpoint() + "/assertions"})
	if err != nil {
		return nil, err
	}
	entities, err := i.client.deserialize(envelope.Result)
	if err != nil {
		return nil, err
	}
	return entitiesAs[*Assertion](entities)
}

// FetchBadgeClasses lists this issuer's badgeclasses. With loadNames true
// and unique badge names enabled, the results also (re)populate the
// client's badge-name index.
func (i *Issuer) FetchBadgeClasses(ctx context.Context, loadNames bool) ([]*BadgeClass, error) {
	if err := i.requireID("Issuer.FetchBadgeClasses"); err != nil {
		return nil, err
	}

	envelope, err := i.client.gw.Do(ctx, gateway.Request{Endpoint: i.entityEndpoint() + "/badgeclasses"})
	if err != nil {
		return nil, err
	}
	entities, err := i.client.deserialize(envelope.Result)
	if err != nil {
		return nil, err
	}
	badges, err := entitiesAs[*BadgeClass](entities)
	if err != nil {
		return nil, err
	}

	if loadNames {
		for _, badge := range badges {
			i.client.saveBadgeName(badge)
		}
	}
	return badges, nil
}

// CreateBadgeClass creates a badgeclass under this issuer.
func (i *Issuer) CreateBadgeClass(ctx context.Context, params BadgeClassParams) (*BadgeClass, error) {
	if err := i.requireID("Issuer.CreateBadgeClass"); err != nil {
		return nil, err
	}

	params.IssuerID = i.id
	badge := NewBadgeClass(i.client, "")
	if err := badge.Create(ctx, params); err != nil {
		return nil, err
	}
	return badge, nil
}

// EditStaff adds, modifies or removes a staff member on this issuer, then
// re-fetches the issuer to pick up the updated staff list. The action and
// role enums are validated before any call is made.
func (i *Issuer) EditStaff(ctx context.Context, action StaffAction, email string, role StaffRole) (*gateway.Envelope, error) {
	if err := i.requireID("Issuer.EditStaff"); err != nil {
		return nil, err
	}

	switch action {
	case StaffActionAdd, StaffActionModify, StaffActionRemove:
	default:
		return nil, errors.Wrapf(ErrInvalidStaffAction, "%q", action)
	}
	switch role {
	case StaffRoleOwner, StaffRoleEditor, StaffRoleStaff:
	default:
		return nil, errors.Wrapf(ErrInvalidStaffRole, "%q", role)
	}

	payload := map[string]any{
		"action": action,
		"email":  email,
		"role":   role,
	}

	envelope, err := i.client.gw.Do(ctx, gateway.Request{
		Endpoint: fmt.Sprintf(issuerStaffEndpointV1, i.id),
		Method:   http.MethodPost,
		Body:     payload,
	})
	if err != nil {
		return nil, err
	}

	if err := i.Fetch(ctx); err != nil {
		return nil, errors.Wrap(err, "[Issuer.EditStaff] refresh after staff edit")
	}
	return envelope, nil
}
