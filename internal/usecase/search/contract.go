package search

import (
	"context"

	"github.com/kailas-cloud/semdex/internal/domain/search/request"
	"github.com/kailas-cloud/semdex/internal/domain/search/result"
)

// Repository defines the storage contract for similarity search.
type Repository interface {
	SimilaritySearch(ctx context.Context, q *request.Query) ([]result.Match, error)
}

// ResultObserver records how many hits a search produced.
type ResultObserver interface {
	Observe(filtered bool, hits int)
}
