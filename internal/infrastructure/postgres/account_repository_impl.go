package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/repository"
)

const accountColumns = `username, password_hash, organization, loan_amount, balance, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	if err := row.Scan(&a.Username, &a.PasswordHash, &a.Organization,
		&a.LoanAmount, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, password_hash, organization, loan_amount, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, a.Username, a.PasswordHash, a.Organization, a.LoanAmount, a.Balance)

	return row.Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE username = $1
	`, username)

	return scanAccount(row)
}

func (r *AccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		a := &entity.Account{}
		if err := rows.Scan(&a.Username, &a.PasswordHash, &a.Organization,
			&a.LoanAmount, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

// IssueLoan relies on the loan_amount = 0 guard so the unfunded -> owing
// transition happens at most once even under concurrent requests.
func (r *AccountRepository) IssueLoan(ctx context.Context, username string, amount float64) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET loan_amount = $2, balance = $2, updated_at = now()
		WHERE username = $1 AND loan_amount = 0
		RETURNING `+accountColumns+`
	`, username, amount)

	a, err := scanAccount(row)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, r.classifyIssueFailure(ctx, username)
	}
	return a, err
}

func (r *AccountRepository) classifyIssueFailure(ctx context.Context, username string) error {
	if _, err := r.GetByUsername(ctx, username); err != nil {
		return err
	}
	return repository.ErrAlreadyFunded
}

// ApplyPayment is a single conditional UPDATE: the balance >= amount guard
// both enforces the balance invariant and makes the read-modify-write atomic,
// so concurrent payments serialize on the row instead of losing updates.
func (r *AccountRepository) ApplyPayment(ctx context.Context, username string, amount float64) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance - $2, updated_at = now()
		WHERE username = $1 AND loan_amount > 0 AND balance >= $2
		RETURNING `+accountColumns+`
	`, username, amount)

	a, err := scanAccount(row)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, r.classifyPaymentFailure(ctx, username)
	}
	return a, err
}

func (r *AccountRepository) classifyPaymentFailure(ctx context.Context, username string) error {
	a, err := r.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !a.Owing() {
		return repository.ErrNotFunded
	}
	return repository.ErrPaymentOutOfRange
}

// ResetAll zeroes every account in one statement. Postgres applies the
// UPDATE atomically, so a concurrent List sees the old rows or the new
// rows, never a mix.
func (r *AccountRepository) ResetAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET loan_amount = 0, balance = 0, updated_at = now()
	`)
	return err
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
