// Package transactions implements the append-only transaction ledger.
package transactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/transaction"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/user"
	"github.com/Custodia-Network/wallet_layer/internal/app/metrics"
	"github.com/Custodia-Network/wallet_layer/internal/app/services/users"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage"
	"github.com/Custodia-Network/wallet_layer/pkg/logger"
)

// DefaultListLimit bounds ListForUser. There is no pagination cursor;
// records beyond the limit are not reachable through this service.
const DefaultListLimit = 50

// Record is the caller-supplied portion of a ledger entry.
type Record struct {
	Type             string
	Amount           float64
	RecipientAddress string
	Hash             string
	Status           string
	Details          string
}

// Service appends ledger entries and maintains the deposit side effect on
// the owner's cached balance.
type Service struct {
	store    storage.TransactionStore
	registry *users.Service
	log      *logger.Logger
}

// New constructs a transaction ledger service.
func New(store storage.TransactionStore, registry *users.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("transactions")
	}
	return &Service{store: store, registry: registry, log: log}
}

// Record appends one ledger row for u. Amount and type are stored as
// supplied; nothing validates the amount against the owner's balance.
// Deposits additionally credit the cached balance after the row is
// written; the two writes are not atomic and a failed credit leaves the
// ledger row in place.
func (s *Service) Record(ctx context.Context, u user.User, rec Record) (transaction.Transaction, error) {
	if strings.TrimSpace(rec.Type) == "" {
		return transaction.Transaction{}, fmt.Errorf("type is required")
	}
	status := strings.TrimSpace(rec.Status)
	if status == "" {
		status = transaction.StatusPending
	}

	tx := transaction.Transaction{
		UserID:           u.ID,
		Type:             rec.Type,
		Amount:           rec.Amount,
		RecipientAddress: rec.RecipientAddress,
		Hash:             rec.Hash,
		Status:           status,
		Details:          rec.Details,
	}
	tx, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return transaction.Transaction{}, err
	}
	metrics.RecordTransaction(tx.Type)

	if tx.Type == transaction.TypeDeposit {
		if _, err := s.registry.Credit(ctx, u, tx.Amount); err != nil {
			s.log.WithError(err).
				WithField("transaction_id", tx.ID).
				Warn("deposit recorded but balance credit failed")
		}
	}

	s.log.WithField("transaction_id", tx.ID).
		WithField("user_id", u.ID).
		WithField("type", tx.Type).
		Info("transaction recorded")
	return tx, nil
}

// ListForUser returns the newest entries for a user, capped at
// DefaultListLimit.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]transaction.Transaction, error) {
	return s.store.ListUserTransactions(ctx, userID, DefaultListLimit)
}

// UpdateStatus mutates a ledger entry's status in place. Transitions are
// caller-driven; no state machine is enforced.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if err := s.store.UpdateTransactionStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.WithField("transaction_id", id).
		WithField("status", status).
		Info("transaction status updated")
	return nil
}
