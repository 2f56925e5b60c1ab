package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Custodia-Network/wallet_layer/internal/app/domain/loan"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/transaction"
	"github.com/Custodia-Network/wallet_layer/internal/app/domain/user"
	"github.com/Custodia-Network/wallet_layer/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.TransactionStore = (*Store)(nil)
var _ storage.LoanStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, walletAddress, email string) (user.User, error) {
	now := time.Now().UTC()
	u := user.User{
		WalletAddress: walletAddress,
		Email:         email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (wallet_address, email, bank_balance, created_at, updated_at)
		VALUES ($1, $2, 0, $3, $4)
		RETURNING id
	`, walletAddress, toNullString(email), u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByWallet(ctx context.Context, walletAddress string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, wallet_address, email, bank_balance, created_at, updated_at
		FROM users
		WHERE wallet_address = $1
	`, walletAddress)

	var (
		u     user.User
		email sql.NullString
	)
	if err := row.Scan(&u.ID, &u.WalletAddress, &email, &u.BankBalance, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	if email.Valid {
		u.Email = email.String
	}
	return u, nil
}

func (s *Store) UpdateBalance(ctx context.Context, walletAddress string, balance float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET bank_balance = $2, updated_at = $3
		WHERE wallet_address = $1
	`, walletAddress, balance, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- TransactionStore -------------------------------------------------------

func (s *Store) CreateTransaction(ctx context.Context, tx transaction.Transaction) (transaction.Transaction, error) {
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if tx.Status == "" {
		tx.Status = transaction.StatusPending
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, transaction_type, amount, recipient_address, transaction_hash, status, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, tx.UserID, tx.Type, tx.Amount, toNullString(tx.RecipientAddress), toNullString(tx.Hash), tx.Status, toNullString(tx.Details), tx.CreatedAt, tx.UpdatedAt).Scan(&tx.ID)
	if err != nil {
		return transaction.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) ListUserTransactions(ctx context.Context, userID int64, limit int) ([]transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, transaction_type, amount, recipient_address, transaction_hash, status, details, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []transaction.Transaction
	for rows.Next() {
		var (
			tx        transaction.Transaction
			recipient sql.NullString
			hash      sql.NullString
			details   sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &recipient, &hash, &tx.Status, &details, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
			return nil, err
		}
		tx.RecipientAddress = recipient.String
		tx.Hash = hash.String
		tx.Details = details.String
		result = append(result, tx)
	}
	return result, rows.Err()
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id int64, status string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- LoanStore --------------------------------------------------------------

func (s *Store) CreateLoan(ctx context.Context, ln loan.Loan) (loan.Loan, error) {
	now := time.Now().UTC()
	ln.CreatedAt = now
	ln.UpdatedAt = now
	if ln.Status == "" {
		ln.Status = loan.StatusApproved
	}
	if ln.DueDate.IsZero() {
		ln.DueDate = now.AddDate(0, 0, ln.TermDays)
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO loans (user_id, loan_amount, interest_rate, loan_term_days, total_repayment, status, created_at, due_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, ln.UserID, ln.Amount, ln.InterestRate, ln.TermDays, ln.TotalRepayment, ln.Status, ln.CreatedAt, ln.DueDate, ln.UpdatedAt).Scan(&ln.ID)
	if err != nil {
		return loan.Loan{}, err
	}
	return ln, nil
}

func (s *Store) ListUserLoans(ctx context.Context, userID int64) ([]loan.Loan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, loan_amount, interest_rate, loan_term_days, total_repayment, status, created_at, due_date, updated_at
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []loan.Loan
	for rows.Next() {
		var ln loan.Loan
		if err := rows.Scan(&ln.ID, &ln.UserID, &ln.Amount, &ln.InterestRate, &ln.TermDays, &ln.TotalRepayment, &ln.Status, &ln.CreatedAt, &ln.DueDate, &ln.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, ln)
	}
	return result, rows.Err()
}

func (s *Store) UpdateLoanStatus(ctx context.Context, id int64, status string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE loans
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) ListOverdueLoans(ctx context.Context) ([]loan.Overdue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.user_id, l.loan_amount, l.interest_rate, l.loan_term_days, l.total_repayment, l.status, l.created_at, l.due_date, l.updated_at, u.wallet_address
		FROM loans l
		JOIN users u ON l.user_id = u.id
		WHERE l.due_date < $1 AND l.status = $2
	`, time.Now().UTC(), loan.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []loan.Overdue
	for rows.Next() {
		var od loan.Overdue
		if err := rows.Scan(&od.ID, &od.UserID, &od.Amount, &od.InterestRate, &od.TermDays, &od.TotalRepayment, &od.Status, &od.CreatedAt, &od.DueDate, &od.UpdatedAt, &od.WalletAddress); err != nil {
			return nil, err
		}
		result = append(result, od)
	}
	return result, rows.Err()
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
