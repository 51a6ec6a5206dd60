package semdex

import (
	"context"
	"fmt"
)

// AddDocuments admits, embeds and stores submissions in one batch.
// Submissions with absent, blank or over-long content are dropped; the
// stored documents are returned in submission order. A submission whose
// metadata holds unsupported value types (slices, structs) is dropped too.
func (c *Client) AddDocuments(ctx context.Context, subs []Submission) (_ []Document, err error) {
	ctx, sp := c.obs.begin(ctx, "add_documents")
	defer func() { sp.end(err) }()

	docs, err := c.docSvc.Add(ctx, toInternalSubmissions(subs))
	if err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}
	return fromInternalDocuments(docs), nil
}

// Delete removes documents by ID in one store call. It returns ids when the
// store confirms the delete and an empty list otherwise.
func (c *Client) Delete(ctx context.Context, ids []string) (_ []string, err error) {
	ctx, sp := c.obs.begin(ctx, "delete")
	defer func() { sp.end(err) }()

	deleted, err := c.docSvc.Delete(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("delete documents: %w", err)
	}
	return deleted, nil
}
