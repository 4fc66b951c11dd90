package notification

import (
	"context"
	"time"

	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/sirupsen/logrus"
)

// PaymentEvent describes a payment whose settlement just completed.
type PaymentEvent struct {
	PaymentID string    `json:"payment_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"payment_type"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	SettledAt time.Time `json:"settled_at"`
}

// Notifier is told about settled payments. Failures are reported to the
// caller, who only logs them.
type Notifier interface {
	PaymentSettled(ctx context.Context, event PaymentEvent) error
}

type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PaymentSettled(_ context.Context, event PaymentEvent) error {
	n.logger.WithFields(logrus.Fields{
		"payment_id": event.PaymentID,
		"status":     event.Status,
	}).Info("Payment completed")
	return nil
}
