package application

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
	repo "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/repository"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrLoanCapExceeded   = errors.New("requested amount exceeds the loan cap")
	ErrAlreadyFunded     = errors.New("a loan has already been issued to this account")
	ErrNotFunded         = errors.New("no loan has been issued to this account")
	ErrPaymentOutOfRange = errors.New("payment exceeds the outstanding balance")
)

// LoanService owns the per-account loan state machine: one issuance while
// unfunded, then any number of validated repayments.
type LoanService struct {
	Repo    repo.AccountRepository
	Redis   *redis.Client
	Logger  *logrus.Logger
	Audit   AuditPublisher
	LoanCap float64
}

func NewLoanService(r repo.AccountRepository, rdb *redis.Client, logger *logrus.Logger, audit AuditPublisher, loanCap float64) *LoanService {
	return &LoanService{Repo: r, Redis: rdb, Logger: logger, Audit: audit, LoanCap: loanCap}
}

// PaymentResult is the view of an account after a mutation.
type PaymentResult struct {
	LoanAmount float64 `json:"loan_amount"`
	Balance    float64 `json:"balance"`
	AmountPaid float64 `json:"amount_paid"`
	Progress   float64 `json:"progress"`
}

func resultFrom(a *entity.Account) *PaymentResult {
	return &PaymentResult{
		LoanAmount: a.LoanAmount,
		Balance:    a.Balance,
		AmountPaid: a.AmountPaid(),
		Progress:   a.Progress(),
	}
}

// GetAccount serves the read-only issuance and repayment views.
func (s *LoanService) GetAccount(ctx context.Context, username string) (*entity.Account, error) {
	a, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

// IssueLoan funds the account once: 0 < amount <= LoanCap, and only while
// the account is still unfunded. The guarded UPDATE in the repository makes
// the transition atomic under concurrent requests.
func (s *LoanService) IssueLoan(ctx context.Context, username string, amount float64) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > s.LoanCap {
		return nil, ErrLoanCapExceeded
	}

	a, err := s.Repo.IssueLoan(ctx, username, amount)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrAccountNotFound
		case errors.Is(err, repo.ErrAlreadyFunded):
			return nil, ErrAlreadyFunded
		}
		return nil, err
	}

	s.invalidateLeaderboard(ctx)
	publishAudit(ctx, s.Audit, s.Logger, AuditEvent{
		Type:     EventLoanIssued,
		Username: username,
		Amount:   amount,
		Balance:  a.Balance,
	})
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"username": username, "amount": amount}).Info("loan issued")
	}
	return resultFrom(a), nil
}

// RecordPayment applies one repayment. Out-of-range payments (non-positive,
// or larger than the outstanding balance) are rejected so the
// 0 <= balance <= loan_amount invariant always holds.
func (s *LoanService) RecordPayment(ctx context.Context, username string, amount float64) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	a, err := s.Repo.ApplyPayment(ctx, username, amount)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrAccountNotFound
		case errors.Is(err, repo.ErrNotFunded):
			return nil, ErrNotFunded
		case errors.Is(err, repo.ErrPaymentOutOfRange):
			return nil, ErrPaymentOutOfRange
		}
		return nil, err
	}

	s.invalidateLeaderboard(ctx)
	publishAudit(ctx, s.Audit, s.Logger, AuditEvent{
		Type:     EventPaymentRecorded,
		Username: username,
		Amount:   amount,
		Balance:  a.Balance,
	})
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"username": username, "amount": amount, "balance": a.Balance}).Info("payment recorded")
	}
	return resultFrom(a), nil
}

func (s *LoanService) invalidateLeaderboard(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, leaderboardCacheKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("leaderboard cache invalidation failed")
	}
}
