// Package loan defines fixed-rate loan records and the term rate table.
package loan

import "time"

// Loan statuses seen by the originator. Transitions are caller-driven; the
// originator itself only ever writes StatusApproved.
const (
	StatusApproved  = "approved"
	StatusActive    = "active"
	StatusRepaid    = "repaid"
	StatusDefaulted = "defaulted"
)

// Loan is an issued loan. TotalRepayment is computed once at origination
// and never recalculated.
type Loan struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Amount         float64   `json:"loan_amount"`
	InterestRate   float64   `json:"interest_rate"`
	TermDays       int       `json:"loan_term_days"`
	TotalRepayment float64   `json:"total_repayment"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	DueDate        time.Time `json:"due_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Overdue pairs a loan with its owner's wallet address, as produced by the
// overdue join against users.
type Overdue struct {
	Loan
	WalletAddress string `json:"wallet_address"`
}

var termRates = map[int]float64{
	30:  5,
	90:  8,
	180: 12,
}

const defaultRate = 10

// RateForTerm returns the interest rate in percent for a loan term. Terms
// outside the table fall back to the default rate.
func RateForTerm(termDays int) float64 {
	if rate, ok := termRates[termDays]; ok {
		return rate
	}
	return defaultRate
}
