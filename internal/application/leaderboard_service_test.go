package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
)

func newBoardService(repo *fakeAccountRepo, pub AuditPublisher) *LeaderboardService {
	return &LeaderboardService{Repo: repo, Audit: pub, AdminUsername: "admin"}
}

func funded(username, org string, loan, balance float64) *entity.Account {
	return &entity.Account{Username: username, Organization: org, LoanAmount: loan, Balance: balance}
}

func TestLeaderboardBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by progress descending", func(t *testing.T) {
		repo := newFakeRepo(
			funded("azzip", "Azzip Pizza", 200, 100), // 50%
			funded("wabash", "Wabash", 300, 30),      // 90%
			funded("tipmont", "Tipmont", 100, 100),   // 0%
			unfunded("kirbyrisk", "Kirby Risk"),      // unfunded, 0%
			funded("admin", "JA Admin", 0, 0),        // excluded
		)
		svc := newBoardService(repo, nil)

		board, err := svc.Build(ctx, "azzip")
		require.NoError(t, err)
		require.Len(t, board.Entries, 4)
		assert.Equal(t, "Wabash", board.Entries[0].Organization)
		assert.Equal(t, 90.0, board.Entries[0].Progress)
		assert.Equal(t, "Azzip Pizza", board.Entries[1].Organization)
		assert.False(t, board.CanReset)
	})

	t.Run("breaks ties by organization name ascending", func(t *testing.T) {
		repo := newFakeRepo(
			funded("wabash", "Wabash", 100, 50),
			funded("azzip", "Azzip Pizza", 200, 100),
			funded("tipmont", "Tipmont", 300, 150),
		)
		svc := newBoardService(repo, nil)

		board, err := svc.Build(ctx, "wabash")
		require.NoError(t, err)
		names := []string{board.Entries[0].Organization, board.Entries[1].Organization, board.Entries[2].Organization}
		assert.Equal(t, []string{"Azzip Pizza", "Tipmont", "Wabash"}, names)
	})

	t.Run("identical snapshots produce identical ordering", func(t *testing.T) {
		repo := newFakeRepo(
			funded("a1", "Org B", 100, 50),
			funded("a2", "Org A", 200, 100),
			funded("a3", "Org C", 100, 75),
		)
		svc := newBoardService(repo, nil)

		first, err := svc.Build(ctx, "a1")
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := svc.Build(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, first.Entries, again.Entries)
		}
	})

	t.Run("admin sees the reset control", func(t *testing.T) {
		svc := newBoardService(newFakeRepo(funded("admin", "JA Admin", 0, 0)), nil)
		board, err := svc.Build(ctx, "admin")
		require.NoError(t, err)
		assert.True(t, board.CanReset)
		assert.Empty(t, board.Entries)
	})
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("admin resets every account", func(t *testing.T) {
		repo := newFakeRepo(
			funded("azzip", "Azzip Pizza", 200, 100),
			funded("wabash", "Wabash", 300, 30),
		)
		pub := &recordingPublisher{}
		svc := newBoardService(repo, pub)

		require.NoError(t, svc.ResetAll(ctx, "admin"))

		accounts, err := repo.List(ctx)
		require.NoError(t, err)
		for _, a := range accounts {
			assert.Equal(t, 0.0, a.LoanAmount)
			assert.Equal(t, 0.0, a.Balance)
		}
		assert.Equal(t, []string{EventAccountsReset}, pub.types())
	})

	t.Run("is idempotent", func(t *testing.T) {
		repo := newFakeRepo(funded("azzip", "Azzip Pizza", 200, 100))
		svc := newBoardService(repo, nil)

		require.NoError(t, svc.ResetAll(ctx, "admin"))
		require.NoError(t, svc.ResetAll(ctx, "admin"))

		a, _ := repo.GetByUsername(ctx, "azzip")
		assert.Equal(t, 0.0, a.LoanAmount)
		assert.Equal(t, 0.0, a.Balance)
	})

	t.Run("non-admin is rejected without mutation", func(t *testing.T) {
		repo := newFakeRepo(funded("azzip", "Azzip Pizza", 200, 100))
		svc := newBoardService(repo, nil)

		err := svc.ResetAll(ctx, "azzip")
		assert.ErrorIs(t, err, ErrNotAuthorized)

		a, _ := repo.GetByUsername(ctx, "azzip")
		assert.Equal(t, 200.0, a.LoanAmount)
		assert.Equal(t, 100.0, a.Balance)
	})
}

// TestCompetitionRound walks one account through the whole competition:
// issue 300, pay 100, pay 200, admin reset, rejected non-admin reset.
func TestCompetitionRound(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(unfunded("acme", "Acme"), funded("admin", "JA Admin", 0, 0))
	loans := newLoanService(repo, nil)
	board := newBoardService(repo, nil)

	res, err := loans.IssueLoan(ctx, "acme", 300)
	require.NoError(t, err)
	assert.Equal(t, 300.0, res.Balance)
	assert.Equal(t, 0.0, res.Progress)

	res, err = loans.RecordPayment(ctx, "acme", 100)
	require.NoError(t, err)
	assert.Equal(t, 200.0, res.Balance)
	assert.Equal(t, 33.33, res.Progress)

	res, err = loans.RecordPayment(ctx, "acme", 200)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Balance)
	assert.Equal(t, 100.0, res.Progress)

	require.NoError(t, board.ResetAll(ctx, "admin"))
	a, err := repo.GetByUsername(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.LoanAmount)
	assert.Equal(t, 0.0, a.Balance)
	assert.Equal(t, 0.0, a.Progress())

	err = board.ResetAll(ctx, "acme")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	a, _ = repo.GetByUsername(ctx, "acme")
	assert.Equal(t, 0.0, a.LoanAmount)
}
