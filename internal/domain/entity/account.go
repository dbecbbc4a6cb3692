package entity

import (
	"math"
	"time"
)

// Account lifecycle states with respect to loan issuance.
// An account is Unfunded until its one-time loan is issued and
// Owing afterwards; repayments never leave the Owing state.
const (
	StateUnfunded = "unfunded"
	StateOwing    = "owing"
)

// Account is the aggregate root for the loan competition domain.
// Credentials are stored as bcrypt hashes in PasswordHash.
//
// Invariant: 0 <= Balance <= LoanAmount.
type Account struct {
	Username     string
	PasswordHash string
	Organization string
	LoanAmount   float64
	Balance      float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// State reports the lifecycle state derived from LoanAmount.
func (a *Account) State() string {
	if a.LoanAmount == 0 {
		return StateUnfunded
	}
	return StateOwing
}

// Owing reports whether a loan has been issued to this account.
func (a *Account) Owing() bool { return a.LoanAmount > 0 }

// AmountPaid is the total repaid against the original loan.
func (a *Account) AmountPaid() float64 { return a.LoanAmount - a.Balance }

// Progress is the share of the loan repaid, expressed 0-100 and
// rounded half-up to two decimals. Unfunded accounts report 0.
func (a *Account) Progress() float64 {
	if a.LoanAmount == 0 {
		return 0
	}
	pct := (a.LoanAmount - a.Balance) / a.LoanAmount * 100
	return math.Round(pct*100) / 100
}
