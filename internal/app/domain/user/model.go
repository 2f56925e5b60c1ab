// Package user defines the registered wallet owner record.
package user

import "time"

// User is a registered wallet owner. BankBalance is a denormalized cache
// maintained by deposit and loan operations; it is never recomputed from
// the transaction ledger.
type User struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Email         string    `json:"email,omitempty"`
	BankBalance   float64   `json:"bank_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
