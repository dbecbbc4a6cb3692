package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/container"
	handlers "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/http"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/middleware"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

// AuthModule wires authentication routes
// Public: POST /api/login, POST /api/refresh
// Protected: POST /api/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil) // 10 req/min per IP
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Session(container.GetRedis(), m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
	}
}
