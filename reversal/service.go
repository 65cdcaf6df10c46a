package reversal

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/arkantrust/abassist/models"
	"github.com/arkantrust/abassist/transactions"
)

// Precondition failures. Each one wraps ErrPrecondition; the dispatcher is
// never called when one is returned.
var (
	ErrPrecondition    = errors.New("reversal precondition failed")
	ErrReasonRequired  = fmt.Errorf("%w: reversal reason is required", ErrPrecondition)
	ErrNotFound        = fmt.Errorf("%w: transaction not found", ErrPrecondition)
	ErrAlreadyReversed = fmt.Errorf("%w: transaction has already been reversed", ErrPrecondition)
	ErrNotCompleted    = fmt.Errorf("%w: only completed transactions can be reversed", ErrPrecondition)
)

// Store is the part of the transaction service the reversal flow needs.
// *transactions.Service implements it.
type Store interface {
	Get(ctx context.Context, id string) (*models.Transaction, error)
	UpdateReversalStatus(ctx context.Context, id, reversalID, status string) error
}

// Service checks reversal preconditions, dispatches the reversal and records
// the outcome on the transaction.
type Service struct {
	store      Store
	dispatcher Dispatcher
	policy     *bluemonday.Policy
	logger     *slog.Logger
}

// NewService returns a Service.
func NewService(store Store, dispatcher Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		policy:     bluemonday.StrictPolicy(),
		logger:     logger,
	}
}

// Initiate starts a reversal of txnID.
//
// The reason is required; notes are appended as "reason - notes". Markup is
// stripped from both before they leave the portal. The transaction must exist,
// must not already be reversed and must itself be COMPLETED.
func (s *Service) Initiate(ctx context.Context, txnID, reason, notes string) (*models.ReversalResult, error) {
	reason = s.clean(reason)
	notes = s.clean(notes)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	txn, err := s.store.Get(ctx, txnID)
	if err != nil {
		if errors.Is(err, transactions.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if txn.ReversalStatus == models.StatusCompleted {
		return nil, ErrAlreadyReversed
	}
	if txn.TxnStatus != models.StatusCompleted {
		return nil, ErrNotCompleted
	}

	full := reason
	if notes != "" {
		full += " - " + notes
	}

	res, err := s.dispatcher.Initiate(ctx, txnID, full)
	if err != nil {
		s.logger.Error("reversal dispatch failure", "txn_id", txnID, "error", err)
		if !errors.Is(err, ErrDispatch) {
			err = fmt.Errorf("%w: %v", ErrDispatch, err)
		}
		return nil, err
	}
	if !res.Success {
		s.logger.Error("reversal dispatch failure", "txn_id", txnID, "message", res.Message)
		return res, fmt.Errorf("%w: %s", ErrDispatch, res.Message)
	}

	if err := s.store.UpdateReversalStatus(ctx, txnID, res.ReversalID, models.StatusPending); err != nil {
		s.logger.Error("error updating reversal status", "txn_id", txnID, "reversal_id", res.ReversalID, "error", err)
	}
	s.logger.Info("reversal initiated", "txn_id", txnID, "reversal_id", res.ReversalID, "status", res.Status)
	return res, nil
}

// clean strips markup from user text. The policy escapes entities, which are
// turned back into plain characters since the text never reaches HTML here.
func (s *Service) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
