package transactions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arkantrust/abassist/models"
)

var (
	// ErrNoCriteria is returned by Service.Search when no criterion is set.
	ErrNoCriteria = errors.New("at least one search criterion is required")

	// ErrUnavailable is returned when the external store is not configured.
	ErrUnavailable = errors.New("transaction store not configured")
)

// Querier is the external store as seen by the Service. *Repository
// implements it.
type Querier interface {
	Search(ctx context.Context, c models.SearchCriteria) ([]models.Transaction, error)
	Get(ctx context.Context, id string) (*models.Transaction, error)
	UpdateReversalStatus(ctx context.Context, id, reversalID, status string) error
}

// Service guards the external store: it validates input before any call and
// turns store failures into empty results with a logged diagnostic.
type Service struct {
	q      Querier
	logger *slog.Logger
}

// NewService returns a Service over q. A nil q means the external store is
// not available; every lookup then degrades to an empty result.
func NewService(q Querier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{q: q, logger: logger}
}

// Available reports whether an external store is configured.
func (s *Service) Available() bool { return s.q != nil }

// Search returns the transactions matching c. ErrNoCriteria is the only error
// it returns; store failures yield an empty list.
func (s *Service) Search(ctx context.Context, c models.SearchCriteria) ([]models.Transaction, error) {
	if c.IsEmpty() {
		return nil, ErrNoCriteria
	}
	if s.q == nil {
		s.logger.Warn("transaction search skipped", "error", ErrUnavailable)
		return []models.Transaction{}, nil
	}

	items, err := s.q.Search(ctx, c)
	if err != nil {
		s.logger.Error("external query failure", "op", "search", "error", err)
		return []models.Transaction{}, nil
	}
	s.logger.Info("transaction search", "results", len(items))
	return items, nil
}

// Get returns one transaction. Any failure, including a missing store, is
// logged and reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Transaction, error) {
	if s.q == nil {
		s.logger.Warn("transaction lookup skipped", "txn_id", id, "error", ErrUnavailable)
		return nil, ErrNotFound
	}

	txn, err := s.q.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("external query failure", "op", "get", "txn_id", id, "error", err)
		}
		return nil, ErrNotFound
	}
	return txn, nil
}

// UpdateReversalStatus forwards to the store.
func (s *Service) UpdateReversalStatus(ctx context.Context, id, reversalID, status string) error {
	if s.q == nil {
		return ErrUnavailable
	}
	if err := s.q.UpdateReversalStatus(ctx, id, reversalID, status); err != nil {
		return err
	}
	s.logger.Info("updated reversal status", "txn_id", id, "status", status)
	return nil
}
