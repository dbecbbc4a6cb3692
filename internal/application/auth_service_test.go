package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

func newAuthService(repo *fakeAccountRepo) *AuthService {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return &AuthService{Repo: repo, JWT: jwt, AdminUsername: "admin"}
}

func seededAccount(t *testing.T, username, org, password string) *entity.Account {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	return &entity.Account{Username: username, Organization: org, PasswordHash: hash}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(seededAccount(t, "azzip", "Azzip Pizza", "azzipcfo"))
	svc := newAuthService(repo)

	t.Run("valid credentials", func(t *testing.T) {
		a, err := svc.Authenticate(ctx, "azzip", "azzipcfo")
		require.NoError(t, err)
		assert.Equal(t, "Azzip Pizza", a.Organization)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "azzip", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost", "azzipcfo")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginRouting(t *testing.T) {
	ctx := context.Background()

	t.Run("unfunded account routes to issuance", func(t *testing.T) {
		repo := newFakeRepo(seededAccount(t, "azzip", "Azzip Pizza", "azzipcfo"))
		svc := newAuthService(repo)

		res, pair, err := svc.Login(ctx, "azzip", "azzipcfo")
		require.NoError(t, err)
		assert.Equal(t, RouteIssuance, res.Next)
		assert.Equal(t, entity.StateUnfunded, res.State)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("owing account routes to repayment", func(t *testing.T) {
		a := seededAccount(t, "wabash", "Wabash", "wabashcfo")
		a.LoanAmount = 200
		a.Balance = 150
		svc := newAuthService(newFakeRepo(a))

		res, _, err := svc.Login(ctx, "wabash", "wabashcfo")
		require.NoError(t, err)
		assert.Equal(t, RouteRepayment, res.Next)
	})

	t.Run("admin routes to leaderboard", func(t *testing.T) {
		svc := newAuthService(newFakeRepo(seededAccount(t, "admin", "JA Admin", "s3cret")))

		res, _, err := svc.Login(ctx, "admin", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, RouteLeaderboard, res.Next)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, _, err := jwt.GenerateAccessToken("azzip", "sid-1")
	require.NoError(t, err)

	claims, err := jwt.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "azzip", claims.Username)
	assert.Equal(t, "sid-1", claims.SessionID)

	// An access token never parses as a refresh token.
	_, err = jwt.ParseRefreshToken(token)
	assert.Error(t, err)
}
