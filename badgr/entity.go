package badgr

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-badgr-client/gateway"
	"github.com/pkg/errors"
)

// Entity is implemented by every typed API resource. An entity with an
// empty id is unbound: it exists only locally until created server-side,
// and operations requiring an id fail with ErrUnboundEntity.
type Entity interface {
	EntityID() string
	RawData() map[string]any

	setData(data map[string]any)
}

// entityConstructors maps the server's entityType discriminator to a
// constructor. Unknown discriminators are rejected rather than passed
// through as untyped data.
var entityConstructors = map[string]func(c *Client) Entity{
	"Issuer":             func(c *Client) Entity { return NewIssuer(c, "") },
	"BadgeClass":         func(c *Client) Entity { return NewBadgeClass(c, "") },
	"Assertion":          func(c *Client) Entity { return NewAssertion(c, "") },
	"BackpackCollection": func(c *Client) Entity { return NewCollection(c, "") },
}

// entityCore carries the state shared by all entity variants: the entity id,
// the raw server data and a non-owning reference to the client whose session
// the entity calls through.
type entityCore struct {
	client   *Client
	endpoint string
	id       string
	data     map[string]any
}

func (e *entityCore) EntityID() string {
	return e.id
}

func (e *entityCore) RawData() map[string]any {
	return e.data
}

func (e *entityCore) setData(data map[string]any) {
	e.data = data
	if id, ok := data["entityId"].(string); ok {
		e.id = id
	}
}

func (e *entityCore) entityEndpoint() string {
	return e.endpoint + "/" + e.id
}

func (e *entityCore) requireID(op string) error {
	if e.id == "" {
		return errors.Wrapf(ErrUnboundEntity, "[%s]", op)
	}
	return nil
}

// Fetch repopulates the entity from the server's copy.
func (e *entityCore) Fetch(ctx context.Context) error {
	if err := e.requireID("Fetch"); err != nil {
		return err
	}

	envelope, err := e.client.gw.Do(ctx, gateway.Request{Endpoint: e.entityEndpoint()})
	if err != nil {
		return err
	}

	item, err := firstResult(envelope)
	if err != nil {
		return err
	}
	e.setData(item)
	return nil
}

// Update writes the entity's current raw data to the server, then fetches
// the authoritative copy back so server-derived fields do not drift.
func (e *entityCore) Update(ctx context.Context) error {
	if err := e.requireID("Update"); err != nil {
		return err
	}

	if _, err := e.client.gw.Do(ctx, gateway.Request{
		Endpoint: e.entityEndpoint(),
		Method:   http.MethodPut,
		Body:     e.data,
	}); err != nil {
		return err
	}
	return e.Fetch(ctx)
}

// Delete removes the entity server-side. Local state is left as-is.
func (e *entityCore) Delete(ctx context.Context) (*gateway.Envelope, error) {
	if err := e.requireID("Delete"); err != nil {
		return nil, err
	}

	return e.client.gw.Do(ctx, gateway.Request{
		Endpoint: e.entityEndpoint(),
		Method:   http.MethodDelete,
	})
}

// deserialize turns a result list into typed entities bound to this client.
func (c *Client) deserialize(result []json.RawMessage) ([]Entity, error) {
	entities := make([]Entity, 0, len(result))
	for _, raw := range result {
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, errors.Wrap(err, "[Client.deserialize] result item")
		}

		tag, _ := item["entityType"].(string)
		construct, ok := entityConstructors[tag]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownEntityType, "%q", tag)
		}

		entity := construct(c)
		entity.setData(item)
		entities = append(entities, entity)
	}
	return entities, nil
}

// firstResult returns the first result item of an envelope as a raw data
// map, failing with ErrNotFound when the result list is empty.
func firstResult(envelope *gateway.Envelope) (map[string]any, error) {
	if len(envelope.Result) == 0 {
		return nil, errors.Wrap(ErrNotFound, "empty result")
	}

	var item map[string]any
	if err := json.Unmarshal(envelope.Result[0], &item); err != nil {
		return nil, errors.Wrap(err, "decode result item")
	}
	return item, nil
}

// entitiesAs narrows a deserialized entity list to one concrete type.
func entitiesAs[T Entity](entities []Entity) ([]T, error) {
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		typed, ok := e.(T)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownEntityType, "unexpected %T in result", e)
		}
		out = append(out, typed)
	}
	return out, nil
}

// nullable maps empty strings to JSON null, matching what the server
// expects for omitted optional fields.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
