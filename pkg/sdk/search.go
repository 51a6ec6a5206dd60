package semdex

import (
	"context"
	"fmt"
)

// Search returns up to topK documents whose similarity to query is at least threshold,
// best first.
func (c *Client) Search(
	ctx context.Context, query string, topK int, threshold float64,
) (_ []Hit, err error) {
	ctx, sp := c.obs.begin(ctx, "search")
	defer func() { sp.end(err) }()

	hits, err := c.searchSvc.Search(ctx, query, topK, threshold)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromInternalHits(hits), nil
}

// SearchByField is Search restricted to documents whose metadata field equals value.
// The field must have been registered with WithFilterField.
func (c *Client) SearchByField(
	ctx context.Context, query string, topK int, threshold float64, field, value string,
) (_ []Hit, err error) {
	ctx, sp := c.obs.begin(ctx, "search_by_field")
	defer func() { sp.end(err) }()

	hits, err := c.searchSvc.SearchByField(ctx, query, topK, threshold, field, value)
	if err != nil {
		return nil, fmt.Errorf("search by field: %w", err)
	}
	return fromInternalHits(hits), nil
}
