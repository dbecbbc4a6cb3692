package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
)

func newLoanService(repo *fakeAccountRepo, pub AuditPublisher) *LoanService {
	return &LoanService{Repo: repo, Audit: pub, LoanCap: 300}
}

func unfunded(username, org string) *entity.Account {
	return &entity.Account{Username: username, Organization: org}
}

func TestIssueLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("funds the account once", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		res, err := svc.IssueLoan(ctx, "acme", 300)
		require.NoError(t, err)
		assert.Equal(t, 300.0, res.LoanAmount)
		assert.Equal(t, 300.0, res.Balance)
		assert.Equal(t, 0.0, res.AmountPaid)
		assert.Equal(t, 0.0, res.Progress)

		a, err := repo.GetByUsername(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, entity.StateOwing, a.State())
	})

	t.Run("rejects amounts above the cap", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		_, err := svc.IssueLoan(ctx, "acme", 300.01)
		assert.ErrorIs(t, err, ErrLoanCapExceeded)

		a, _ := repo.GetByUsername(ctx, "acme")
		assert.Equal(t, 0.0, a.LoanAmount) // state unchanged
	})

	t.Run("rejects zero and negative amounts", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		_, err := svc.IssueLoan(ctx, "acme", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = svc.IssueLoan(ctx, "acme", -50)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects re-issuance on a funded account", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		_, err := svc.IssueLoan(ctx, "acme", 100)
		require.NoError(t, err)
		_, err = svc.IssueLoan(ctx, "acme", 200)
		assert.ErrorIs(t, err, ErrAlreadyFunded)

		a, _ := repo.GetByUsername(ctx, "acme")
		assert.Equal(t, 100.0, a.LoanAmount)
	})

	t.Run("unknown account", func(t *testing.T) {
		svc := newLoanService(newFakeRepo(), nil)
		_, err := svc.IssueLoan(ctx, "ghost", 100)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("publishes an audit event", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := newLoanService(newFakeRepo(unfunded("acme", "Acme")), pub)

		_, err := svc.IssueLoan(ctx, "acme", 150)
		require.NoError(t, err)
		assert.Equal(t, []string{EventLoanIssued}, pub.types())
	})
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("sequence of payments sums against the loan", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		_, err := svc.IssueLoan(ctx, "acme", 300)
		require.NoError(t, err)

		payments := []float64{50, 25, 100, 25}
		var res *PaymentResult
		for _, p := range payments {
			res, err = svc.RecordPayment(ctx, "acme", p)
			require.NoError(t, err)
		}
		assert.Equal(t, 100.0, res.Balance) // 300 - 200
		assert.Equal(t, 200.0, res.AmountPaid)
		assert.Equal(t, 66.67, res.Progress)
	})

	t.Run("rejects overpayment and keeps the invariant", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		_, err := svc.IssueLoan(ctx, "acme", 100)
		require.NoError(t, err)

		_, err = svc.RecordPayment(ctx, "acme", 100.01)
		assert.ErrorIs(t, err, ErrPaymentOutOfRange)

		a, _ := repo.GetByUsername(ctx, "acme")
		assert.Equal(t, 100.0, a.Balance)
	})

	t.Run("rejects non-positive payments", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		_, err := svc.IssueLoan(ctx, "acme", 100)
		require.NoError(t, err)

		_, err = svc.RecordPayment(ctx, "acme", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = svc.RecordPayment(ctx, "acme", -10)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects payment before issuance", func(t *testing.T) {
		svc := newLoanService(newFakeRepo(unfunded("acme", "Acme")), nil)
		_, err := svc.RecordPayment(ctx, "acme", 10)
		assert.ErrorIs(t, err, ErrNotFunded)
	})

	t.Run("paying down to zero stays owing", func(t *testing.T) {
		repo := newFakeRepo(unfunded("acme", "Acme"))
		svc := newLoanService(repo, nil)

		_, err := svc.IssueLoan(ctx, "acme", 100)
		require.NoError(t, err)
		res, err := svc.RecordPayment(ctx, "acme", 100)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Balance)
		assert.Equal(t, 100.0, res.Progress)

		a, _ := repo.GetByUsername(ctx, "acme")
		assert.Equal(t, entity.StateOwing, a.State())
	})
}
