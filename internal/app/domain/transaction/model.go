// Package transaction defines the append-only ledger entry.
package transaction

import "time"

// Recognized transaction types. Type is an open string enum: callers may
// submit other values, and only TypeDeposit changes the cached balance.
const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
	TypeTransfer   = "transfer"
)

// StatusPending is assigned when the caller supplies no status.
const StatusPending = "pending"

// Transaction is one ledger row. Amount is caller-supplied and never
// checked against the owner's balance.
type Transaction struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Type             string    `json:"transaction_type"`
	Amount           float64   `json:"amount"`
	RecipientAddress string    `json:"recipient_address,omitempty"`
	Hash             string    `json:"transaction_hash,omitempty"`
	Status           string    `json:"status"`
	Details          string    `json:"details,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
