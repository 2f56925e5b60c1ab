package storage

import (
	"context"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/loan"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/transaction"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/user"
)

// UserStore persists wallet owners and their cached balance. Lookups for a
// wallet address with no row return sql.ErrNoRows.
type UserStore interface {
	CreateUser(ctx context.Context, walletAddress, email string) (user.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (user.User, error)
	UpdateBalance(ctx context.Context, walletAddress string, balance float64) error
}

// TransactionStore persists the append-only transaction ledger.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx transaction.Transaction) (transaction.Transaction, error)
	ListUserTransactions(ctx context.Context, userID int64, limit int) ([]transaction.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id int64, status string) error
}

// LoanStore persists loan records.
type LoanStore interface {
	CreateLoan(ctx context.Context, ln loan.Loan) (loan.Loan, error)
	ListUserLoans(ctx context.Context, userID int64) ([]loan.Loan, error)
	UpdateLoanStatus(ctx context.Context, id int64, status string) error
	ListOverdueLoans(ctx context.Context) ([]loan.Overdue, error)
}
