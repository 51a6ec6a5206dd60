package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/semdex/internal/db"
	"github.com/kailas-cloud/semdex/internal/domain"
	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
)

// embedDocuments vectorizes document contents in one batch and records usage on ctx.
func embedDocuments(ctx context.Context, e domain.Embedder, docs []domdoc.Document) ([][]float32, error) {
	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Content()
	}

	res, err := domain.EmbedAll(ctx, e, texts)
	if err != nil {
		return nil, embedError(err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Embeddings, nil
}

func embedQuery(ctx context.Context, e domain.Embedder, text string) ([]float32, error) {
	res, err := e.Embed(ctx, text)
	if err != nil {
		return nil, embedError(err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Embedding, nil
}

func embedError(err error) error {
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		return fmt.Errorf("embed: %w", err)
	}
	return fmt.Errorf("embed: %w: %w", domain.ErrEmbeddingProviderError, err)
}

// storeError classifies a backend failure: a refusal by the server becomes
// ErrStoreRejected, anything else ErrStoreUnavailable.
func storeError(op string, err error) error {
	if db.IsRejected(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreRejected, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
