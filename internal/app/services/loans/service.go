// Package loans implements fixed-rate loan origination and the overdue
// sweep.
package loans

import (
	"context"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/loan"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/user"
	"github.com/Custodia-Network/wallet_layer/internal/app/metrics"
	"github.com/Custodia-Network/wallet_layer/internal/app/services/users"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage"
	"github.com/Custodia-Network/wallet_layer/pkg/logger"
)

// Service originates loans and exposes caller-driven status transitions.
type Service struct {
	store    storage.LoanStore
	registry *users.Service
	log      *logger.Logger
}

// New constructs a loan originator service.
func New(store storage.LoanStore, registry *users.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("loans")
	}
	return &Service{store: store, registry: registry, log: log}
}

// Originate issues a loan to u and credits the principal to the cached
// balance. The rate comes from the fixed term table, the repayment total
// is computed once here and never recalculated, and the due date is the
// creation instant plus the term. New loans are always "approved".
func (s *Service) Originate(ctx context.Context, u user.User, amount float64, termDays int) (loan.Loan, error) {
	rate := loan.RateForTerm(termDays)
	ln := loan.Loan{
		UserID:         u.ID,
		Amount:         amount,
		InterestRate:   rate,
		TermDays:       termDays,
		TotalRepayment: amount * (1 + rate/100),
		Status:         loan.StatusApproved,
	}

	ln, err := s.store.CreateLoan(ctx, ln)
	if err != nil {
		return loan.Loan{}, err
	}
	metrics.RecordLoanOrigination()

	if _, err := s.registry.Credit(ctx, u, ln.Amount); err != nil {
		s.log.WithError(err).
			WithField("loan_id", ln.ID).
			Warn("loan stored but disbursement credit failed")
	}

	s.log.WithField("loan_id", ln.ID).
		WithField("user_id", u.ID).
		WithField("rate", rate).
		WithField("term_days", termDays).
		Info("loan approved")
	return ln, nil
}

// ListForUser returns a user's loans, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]loan.Loan, error) {
	return s.store.ListUserLoans(ctx, userID)
}

// UpdateStatus mutates a loan's status in place. Transitions are
// caller-driven; the originator never moves a loan out of "approved" on
// its own.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if err := s.store.UpdateLoanStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.WithField("loan_id", id).
		WithField("status", status).
		Info("loan status updated")
	return nil
}

// Overdue returns loans whose due date has passed while their status is
// "active", joined with the owner's wallet address.
func (s *Service) Overdue(ctx context.Context) ([]loan.Overdue, error) {
	return s.store.ListOverdueLoans(ctx)
}
