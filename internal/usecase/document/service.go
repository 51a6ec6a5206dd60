package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/semdex/internal/domain/document"
	"github.com/kailas-cloud/semdex/internal/logger"
)

const outcomeAccepted = "accepted"

// Service admits submitted documents into the store and deletes them.
type Service struct {
	repo      Repository
	admission domdoc.Admission
	ingested  Counter
	deleted   Counter
}

// New creates a document service.
func New(repo Repository, admission domdoc.Admission) *Service {
	return &Service{repo: repo, admission: admission}
}

// WithCounters attaches outcome counters for admissions and deletes.
func (s *Service) WithCounters(ingested, deleted Counter) *Service {
	s.ingested = ingested
	s.deleted = deleted
	return s
}

// Add runs every submission through admission and persists the survivors
// in a single call. Rejected submissions are dropped silently; the result
// holds the accepted documents in submission order.
func (s *Service) Add(ctx context.Context, subs []*domdoc.Submission) ([]domdoc.Document, error) {
	ctx, log := logger.With(ctx, zap.String("op", "add_documents"))

	accepted := make([]domdoc.Document, 0, len(subs))
	for i, sub := range subs {
		doc, rejection := s.admission.Admit(sub)
		if rejection != domdoc.Admitted {
			s.count(s.ingested, string(rejection))
			log.Debug("Document rejected",
				zap.Int("position", i),
				zap.String("reason", string(rejection)),
			)
			continue
		}
		s.count(s.ingested, outcomeAccepted)
		accepted = append(accepted, doc)
	}

	if len(accepted) == 0 {
		return accepted, nil
	}

	if err := s.repo.Add(ctx, accepted); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}

	log.Info("Documents added",
		zap.Int("submitted", len(subs)),
		zap.Int("accepted", len(accepted)),
	)
	return accepted, nil
}

// Delete removes documents by id in one call. Only a confirmed delete
// echoes the ids back; a failed or indeterminate outcome yields an empty list.
func (s *Service) Delete(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	ctx, log := logger.With(ctx, zap.String("op", "delete_documents"))

	outcome, err := s.repo.Delete(ctx, ids)
	if err != nil {
		s.count(s.deleted, "error")
		return nil, fmt.Errorf("delete documents: %w", err)
	}
	s.count(s.deleted, outcome.String())

	if !outcome.Confirmed() {
		log.Warn("Delete not confirmed",
			zap.Int("ids", len(ids)),
			zap.Stringer("outcome", outcome),
		)
		return []string{}, nil
	}

	log.Info("Documents deleted", zap.Int("ids", len(ids)))
	return ids, nil
}

func (s *Service) count(c Counter, label string) {
	if c != nil {
		c.Inc(label)
	}
}
