package badgr

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-badgr-client/gateway"
)

const collectionEndpoint = "/v2/backpack/collections"

// Collection is a named group of backpack assertions.
type Collection struct {
	entityCore
}

// NewCollection creates a Collection bound to the given entity id. Pass an
// empty eid for an unbound collection that will be created via Create.
func NewCollection(c *Client, eid string) *Collection {
	return &Collection{entityCore{client: c, endpoint: collectionEndpoint, id: eid}}
}

// Create registers a new backpack collection and populates this entity from
// the server's response.
func (col *Collection) Create(ctx context.Context, name, description string, published bool) error {
	payload := map[string]any{
		"name":        name,
		"description": description,
		"published":   published,
	}

	envelope, err := col.client.gw.Do(ctx, gateway.Request{
		Endpoint: collectionEndpoint,
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
	col.setData(item)
	return nil
}
