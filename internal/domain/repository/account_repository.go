package repository

import (
	"context"
	"errors"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
)

// Sentinel errors returned by AccountRepository implementations.
// The guard failures (ErrAlreadyFunded, ErrNotFunded, ErrPaymentOutOfRange)
// come out of the conditional updates that keep per-account mutations atomic.
var (
	ErrNotFound          = errors.New("account not found")
	ErrAlreadyFunded     = errors.New("loan already issued")
	ErrNotFunded         = errors.New("no loan issued")
	ErrPaymentOutOfRange = errors.New("payment exceeds outstanding balance")
)

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	// List returns every account from a single consistent snapshot.
	List(ctx context.Context) ([]*entity.Account, error)
	Count(ctx context.Context) (int, error)

	// IssueLoan sets loan_amount = balance = amount, guarded so it only
	// applies while the account is still unfunded.
	IssueLoan(ctx context.Context, username string, amount float64) (*entity.Account, error)
	// ApplyPayment decrements the balance as one atomic read-modify-write;
	// two concurrent payments against the same account never lose an update.
	ApplyPayment(ctx context.Context, username string, amount float64) (*entity.Account, error)
	// ResetAll zeroes loan_amount and balance for every account in a single
	// statement; concurrent readers see either all pre-reset or all post-reset rows.
	ResetAll(ctx context.Context) error
}
