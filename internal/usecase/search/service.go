package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semdex/internal/domain/metadata"
	"github.com/kailas-cloud/semdex/internal/domain/search/filter"
	"github.com/kailas-cloud/semdex/internal/domain/search/request"
	"github.com/kailas-cloud/semdex/internal/domain/search/result"
	"github.com/kailas-cloud/semdex/internal/logger"
)

// Service runs similarity searches and projects the matches for callers.
type Service struct {
	repo     Repository
	observer ResultObserver
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithObserver attaches a hit-count observer.
func (s *Service) WithObserver(o ResultObserver) *Service {
	s.observer = o
	return s
}

// Search returns up to topK hits scoring at least threshold.
// Parameters are passed to the store as given.
func (s *Service) Search(
	ctx context.Context, text string, topK int, threshold float64,
) ([]result.Hit, error) {
	q := request.New(text, topK, threshold)
	return s.dispatch(ctx, &q)
}

// SearchByField is Search restricted to documents whose metadata field equals value.
func (s *Service) SearchByField(
	ctx context.Context, text string, topK int, threshold float64, field, value string,
) ([]result.Hit, error) {
	q := request.New(text, topK, threshold,
		request.WithFilter(filter.Eq(field, metadata.String(value))),
	)
	return s.dispatch(ctx, &q)
}

func (s *Service) dispatch(ctx context.Context, q *request.Query) ([]result.Hit, error) {
	matches, err := s.repo.SimilaritySearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	hits := result.Project(matches)
	if s.observer != nil {
		s.observer.Observe(q.HasFilter(), len(hits))
	}

	logger.FromContext(ctx).Debug("Search completed",
		zap.Stringer("query", q),
		zap.Int("hits", len(hits)),
	)
	return hits, nil
}
