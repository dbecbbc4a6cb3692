package application

import (
	"context"
	"sort"
	"sync"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/entity"
	repo "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/domain/repository"
)

// fakeAccountRepo is an in-memory AccountRepository with the same guard
// semantics as the Postgres implementation.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func newFakeRepo(accounts ...*entity.Account) *fakeAccountRepo {
	f := &fakeAccountRepo{accounts: map[string]*entity.Account{}}
	for _, a := range accounts {
		cp := *a
		f.accounts[a.Username] = &cp
	}
	return f
}

func (f *fakeAccountRepo) Create(_ context.Context, a *entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.accounts[a.Username] = &cp
	return nil
}

func (f *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) List(_ context.Context) ([]*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeAccountRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts), nil
}

func (f *fakeAccountRepo) IssueLoan(_ context.Context, username string, amount float64) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if a.LoanAmount != 0 {
		return nil, repo.ErrAlreadyFunded
	}
	a.LoanAmount = amount
	a.Balance = amount
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) ApplyPayment(_ context.Context, username string, amount float64) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if !a.Owing() {
		return nil, repo.ErrNotFunded
	}
	if a.Balance < amount {
		return nil, repo.ErrPaymentOutOfRange
	}
	a.Balance -= amount
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) ResetAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		a.LoanAmount = 0
		a.Balance = 0
	}
	return nil
}

var _ repo.AccountRepository = (*fakeAccountRepo)(nil)

// recordingPublisher captures audit events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := body.(AuditEvent); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
