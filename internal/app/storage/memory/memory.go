package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/loan"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/transaction"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/user"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is
// safe for concurrent use and is primarily intended for tests and local
// development. Absence is reported as sql.ErrNoRows to match the
// PostgreSQL implementation.
type Store struct {
	mu                sync.RWMutex
	nextUserID        int64
	nextTransactionID int64
	nextLoanID        int64
	users             map[int64]user.User
	usersByWallet     map[string]int64
	transactions      []transaction.Transaction
	loans             []loan.Loan
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.TransactionStore = (*Store)(nil)
var _ storage.LoanStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextUserID:        1,
		nextTransactionID: 1,
		nextLoanID:        1,
		users:             make(map[int64]user.User),
		usersByWallet:     make(map[string]int64),
	}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, walletAddress, email string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	u := user.User{
		ID:            s.nextUserID,
		WalletAddress: walletAddress,
		Email:         email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextUserID++
	s.users[u.ID] = u
	s.usersByWallet[walletAddress] = u.ID
	return u, nil
}

func (s *Store) GetUserByWallet(ctx context.Context, walletAddress string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByWallet[walletAddress]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return s.users[id], nil
}

func (s *Store) UpdateBalance(ctx context.Context, walletAddress string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersByWallet[walletAddress]
	if !ok {
		return sql.ErrNoRows
	}
	u := s.users[id]
	u.BankBalance = balance
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

// --- TransactionStore -------------------------------------------------------

func (s *Store) CreateTransaction(ctx context.Context, tx transaction.Transaction) (transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	tx.ID = s.nextTransactionID
	s.nextTransactionID++
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if tx.Status == "" {
		tx.Status = transaction.StatusPending
	}
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) ListUserTransactions(ctx context.Context, userID int64, limit int) ([]transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Insertion order stands in for created_at ordering; walk backwards for
	// newest first.
	var result []transaction.Transaction
	for i := len(s.transactions) - 1; i >= 0 && len(result) < limit; i-- {
		if s.transactions[i].UserID == userID {
			result = append(result, s.transactions[i])
		}
	}
	return result, nil
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].Status = status
			s.transactions[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return sql.ErrNoRows
}

// --- LoanStore --------------------------------------------------------------

func (s *Store) CreateLoan(ctx context.Context, ln loan.Loan) (loan.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	ln.ID = s.nextLoanID
	s.nextLoanID++
	ln.CreatedAt = now
	ln.UpdatedAt = now
	if ln.Status == "" {
		ln.Status = loan.StatusApproved
	}
	if ln.DueDate.IsZero() {
		ln.DueDate = now.AddDate(0, 0, ln.TermDays)
	}
	s.loans = append(s.loans, ln)
	return ln, nil
}

func (s *Store) ListUserLoans(ctx context.Context, userID int64) ([]loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []loan.Loan
	for i := len(s.loans) - 1; i >= 0; i-- {
		if s.loans[i].UserID == userID {
			result = append(result, s.loans[i])
		}
	}
	return result, nil
}

func (s *Store) UpdateLoanStatus(ctx context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.loans {
		if s.loans[i].ID == id {
			s.loans[i].Status = status
			s.loans[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *Store) ListOverdueLoans(ctx context.Context) ([]loan.Overdue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	var result []loan.Overdue
	for _, ln := range s.loans {
		if ln.Status != loan.StatusActive || !ln.DueDate.Before(now) {
			continue
		}
		od := loan.Overdue{Loan: ln}
		if owner, ok := s.users[ln.UserID]; ok {
			od.WalletAddress = owner.WalletAddress
		}
		result = append(result, od)
	}
	return result, nil
}
