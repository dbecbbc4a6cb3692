package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/application"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/middleware"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/response"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/validation"
)

type LoanHandler struct {
	Svc    *application.LoanService
	Logger *logrus.Logger
}

func NewLoanHandler(svc *application.LoanService, logger *logrus.Logger) *LoanHandler {
	return &LoanHandler{Svc: svc, Logger: logger}
}

type issueLoanRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type recordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// GetLoan renders the state behind the issuance form.
func (h *LoanHandler) GetLoan(c *gin.Context) {
	username := c.GetString(middleware.CtxUsernameKey)
	a, err := h.Svc.GetAccount(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"organization": a.Organization,
		"state":        a.State(),
		"loan_cap":     h.Svc.LoanCap,
	}, "loan issuance", nil)
}

// IssueLoan grants the one-time loan for the session's account.
func (h *LoanHandler) IssueLoan(c *gin.Context) {
	username := c.GetString(middleware.CtxUsernameKey)
	var req issueLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.IssueLoan(c.Request.Context(), username, req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res,
		fmt.Sprintf("Loan amount of %g received.", req.Amount),
		gin.H{"next": application.RouteRepayment})
}

// GetPayment renders the current balance, paid-to-date and progress.
func (h *LoanHandler) GetPayment(c *gin.Context) {
	username := c.GetString(middleware.CtxUsernameKey)
	a, err := h.Svc.GetAccount(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"organization": a.Organization,
		"loan_amount":  a.LoanAmount,
		"balance":      a.Balance,
		"amount_paid":  a.AmountPaid(),
		"progress":     a.Progress(),
	}, "repayment", nil)
}

// RecordPayment applies one repayment against the outstanding balance.
func (h *LoanHandler) RecordPayment(c *gin.Context) {
	username := c.GetString(middleware.CtxUsernameKey)
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.RecordPayment(c.Request.Context(), username, req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, fmt.Sprintf("Current balance: %g", res.Balance), nil)
}

// fail maps service errors onto the advisory error taxonomy: validation
// failures re-present the form, persistence failures abort the request.
func (h *LoanHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidAmount),
		errors.Is(err, application.ErrLoanCapExceeded),
		errors.Is(err, application.ErrAlreadyFunded),
		errors.Is(err, application.ErrNotFunded),
		errors.Is(err, application.ErrPaymentOutOfRange):
		response.Error[any](c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error("loan operation failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
