package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
	repo "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/repository"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
)

// Routes the presentation layer sends an authenticated account to,
// chosen by the account's lifecycle state.
const (
	RouteLeaderboard = "/leaderboard"
	RouteIssuance    = "/loan"
	RouteRepayment   = "/payment"
)

const sessionTTL = 24 * time.Hour

type AuthService struct {
	Repo          repo.AccountRepository
	JWT           *helpers.JWTManager
	Redis         *redis.Client
	Logger        *logrus.Logger
	AdminUsername string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResponse struct {
	Username     string `json:"username"`
	Organization string `json:"organization"`
	State        string `json:"state"`
	Next         string `json:"next"`
}

func sessionKey(username string) string {
	return "account:session:" + username
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewAuthService(r repo.AccountRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, adminUsername string) *AuthService {
	return &AuthService{Repo: r, JWT: jwt, Redis: rdb, Logger: logger, AdminUsername: adminUsername}
}

// Authenticate verifies the presented credential against the stored bcrypt
// hash. A missing account and a bad password are indistinguishable to the
// caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*entity.Account, error) {
	a, err := s.Repo.GetByUsername(ctx, username)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, a *entity.Account) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(a.Username, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", a.Username).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.Username, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("username", a.Username).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"username":     a.Username,
			"organization": a.Organization,
			"sid":          sid,
			"logged_in":    true,
			"created_at":   nowRFC3339(),
		}
		key := sessionKey(a.Username)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Login authenticates and binds a session. The response carries the route
// the client should land on: admins go to the leaderboard, unfunded
// accounts to loan issuance, owing accounts to repayment.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, TokenPair, error) {
	a, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, a)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{
		Username:     a.Username,
		Organization: a.Organization,
		State:        a.State(),
		Next:         s.NextRoute(a),
	}
	return resp, pair, nil
}

// NextRoute is the routing decision made at authentication time.
func (s *AuthService) NextRoute(a *entity.Account) string {
	switch {
	case a.Username == s.AdminUsername:
		return RouteLeaderboard
	case a.Owing():
		return RouteRepayment
	default:
		return RouteIssuance
	}
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	a, err := s.Repo.GetByUsername(ctx, claims.Username)
	if err != nil || a == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	// Validate current session id matches the token's sid
	if s.Redis != nil {
		key := sessionKey(a.Username)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	// Rotate session id and tokens
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(a.Username, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.Username, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := sessionKey(a.Username)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, sessionTTL)
		_, _ = pipe.Exec(ctx)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, a.Username, nil
}

// Logout drops the Redis session; cookies are cleared by the handler.
func (s *AuthService) Logout(ctx context.Context, username string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, sessionKey(username)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("username", username).Warn("session delete failed")
	}
}
