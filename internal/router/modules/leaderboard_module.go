package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/container"
	handlers "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/http"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/middleware"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

// LeaderboardModule wires the shared standings and the admin reset
// GET /api/leaderboard, POST /api/leaderboard/reset
type LeaderboardModule struct {
	Handler *handlers.LeaderboardHandler
	JWT     *helpers.JWTManager
}

func NewLeaderboardModule(h *handlers.LeaderboardHandler, jwt *helpers.JWTManager) *LeaderboardModule {
	return &LeaderboardModule{Handler: h, JWT: jwt}
}

func (m *LeaderboardModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Session(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUsername(), nil))
	{
		auth.GET("/leaderboard", m.Handler.Get)
		// Authorization happens in the service; reaching the route is not enough.
		auth.POST("/leaderboard/reset", m.Handler.Reset)
	}
}
