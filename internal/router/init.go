package router

import (
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/application"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/container"
	pginfra "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/infrastructure/postgres"
	handlers "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/http"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	repo := pginfra.NewAccountRepository(container.GetPGPool())

	authSvc := application.NewAuthService(
		repo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		cfg.AdminUsername,
	)
	loanSvc := application.NewLoanService(
		repo,
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		cfg.LoanCap,
	)
	boardSvc := application.NewLeaderboardService(
		repo,
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		cfg.AdminUsername,
		cfg.LeaderboardCacheTTL,
	)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	loanHandler := handlers.NewLoanHandler(loanSvc, container.GetLogger())
	boardHandler := handlers.NewLeaderboardHandler(boardSvc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewLoanModule(loanHandler, container.GetJWT()))
	r.Add(modules.NewLeaderboardModule(boardHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
