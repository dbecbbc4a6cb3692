package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/container"
	handlers "github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/http"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/middleware"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

// LoanModule wires the loan lifecycle routes, all session-protected
// GET/POST /api/loan: issuance form and one-time issuance
// GET/POST /api/payment: repayment view and payment recording
type LoanModule struct {
	Handler *handlers.LoanHandler
	JWT     *helpers.JWTManager
}

func NewLoanModule(h *handlers.LoanHandler, jwt *helpers.JWTManager) *LoanModule {
	return &LoanModule{Handler: h, JWT: jwt}
}

func (m *LoanModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Session(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUsername(), nil))
	{
		auth.GET("/loan", m.Handler.GetLoan)
		auth.POST("/loan", m.Handler.IssueLoan)
		auth.GET("/payment", m.Handler.GetPayment)
		auth.POST("/payment", m.Handler.RecordPayment)
	}
}
