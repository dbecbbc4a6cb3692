package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Audit event types published to the audit queue and persisted by
// cmd/audit_worker.
const (
	EventLoanIssued      = "loan.issued"
	EventPaymentRecorded = "payment.recorded"
	EventAccountsReset   = "accounts.reset"
)

// AuditEvent is the wire shape of a competition audit record.
type AuditEvent struct {
	Type     string    `json:"type"`
	Username string    `json:"username,omitempty"`
	Amount   float64   `json:"amount,omitempty"`
	Balance  float64   `json:"balance,omitempty"`
	At       time.Time `json:"at"`
}

// AuditPublisher is satisfied by helpers.RabbitPublisher.
type AuditPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// publishAudit sends an audit event best-effort; publishing failures are
// logged and never fail the originating operation.
func publishAudit(ctx context.Context, pub AuditPublisher, logger *logrus.Logger, ev AuditEvent) {
	if pub == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := pub.PublishJSON(ctx, ev); err != nil && logger != nil {
		logger.WithError(err).WithField("event", ev.Type).Warn("audit publish failed")
	}
}
