package document

import (
	"context"

	"github.com/kailas-cloud/semdex/internal/domain"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
)

// Repository is the storage contract for documents. Embedding happens behind it.
type Repository interface {
	Add(ctx context.Context, docs []domdoc.Document) error
	Delete(ctx context.Context, ids []string) (domain.DeleteOutcome, error)
}

// Counter counts events by a single label.
type Counter interface {
	Inc(label string)
}
