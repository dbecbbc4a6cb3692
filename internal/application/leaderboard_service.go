package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
	repo "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/repository"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

var ErrNotAuthorized = errors.New("administrator privileges required")

const leaderboardCacheKey = "leaderboard:v1"

// Entry is one ranked row; a transient projection, never persisted.
type Entry struct {
	Organization string  `json:"organization"`
	Progress     float64 `json:"progress"`
}

// Leaderboard is the ranked view plus the caller's reset-control visibility.
type Leaderboard struct {
	Entries  []Entry `json:"entries"`
	CanReset bool    `json:"can_reset"`
}

// LeaderboardService derives the ranking from all accounts and owns the
// admin-gated bulk reset.
type LeaderboardService struct {
	Repo          repo.AccountRepository
	Redis         *redis.Client
	Logger        *logrus.Logger
	Audit         AuditPublisher
	AdminUsername string
	CacheTTL      time.Duration
}

func NewLeaderboardService(r repo.AccountRepository, rdb *redis.Client, logger *logrus.Logger, audit AuditPublisher, adminUsername string, cacheTTL time.Duration) *LeaderboardService {
	return &LeaderboardService{Repo: r, Redis: rdb, Logger: logger, Audit: audit, AdminUsername: adminUsername, CacheTTL: cacheTTL}
}

// Build returns the ranking ordered by progress descending, organization
// name ascending on ties. The admin account is excluded. Entries are cached
// in Redis until the next mutation or the TTL, whichever comes first.
func (s *LeaderboardService) Build(ctx context.Context, callerUsername string) (*Leaderboard, error) {
	canReset := callerUsername == s.AdminUsername

	if s.Redis != nil {
		var cached []Entry
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, leaderboardCacheKey, &cached); err == nil && ok {
			return &Leaderboard{Entries: cached, CanReset: canReset}, nil
		}
	}

	accounts, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := s.rank(accounts)

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, leaderboardCacheKey, entries, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("leaderboard cache write failed")
		}
	}
	return &Leaderboard{Entries: entries, CanReset: canReset}, nil
}

func (s *LeaderboardService) rank(accounts []*entity.Account) []Entry {
	entries := make([]Entry, 0, len(accounts))
	for _, a := range accounts {
		if a.Username == s.AdminUsername {
			continue
		}
		entries = append(entries, Entry{Organization: a.Organization, Progress: a.Progress()})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Progress != entries[j].Progress {
			return entries[i].Progress > entries[j].Progress
		}
		return entries[i].Organization < entries[j].Organization
	})
	return entries
}

// ResetAll returns every account to the unfunded state in one bulk update.
// Only the distinguished admin identity may call it; anyone else gets
// ErrNotAuthorized and no record is touched.
func (s *LeaderboardService) ResetAll(ctx context.Context, callerUsername string) error {
	if callerUsername != s.AdminUsername {
		return ErrNotAuthorized
	}
	if err := s.Repo.ResetAll(ctx); err != nil {
		return err
	}

	if s.Redis != nil {
		if err := helpers.RedisDel(ctx, s.Redis, leaderboardCacheKey); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("leaderboard cache invalidation failed")
		}
	}
	publishAudit(ctx, s.Audit, s.Logger, AuditEvent{Type: EventAccountsReset, Username: callerUsername})
	if s.Logger != nil {
		s.Logger.WithField("username", callerUsername).Info("competition reset")
	}
	return nil
}
