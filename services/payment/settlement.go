package payment

import (
	"context"
	"time"

	"github.com/finternet/finternet-backend/internal/store"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/services/monitoring/metrics"
	"github.com/finternet/finternet-backend/services/monitoring/tasks"
	"github.com/finternet/finternet-backend/services/notification"
	"github.com/sirupsen/logrus"
)

// Settler simulates the payment network: after a fixed delay a pending
// payment is marked completed. There are no retries.
type Settler struct {
	scheduler *tasks.TaskScheduler
	store     *store.RecordStore[Payment]
	delay     time.Duration
	notifier  notification.Notifier
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

func NewSettler(scheduler *tasks.TaskScheduler, s *store.RecordStore[Payment], delay time.Duration, notifier notification.Notifier, logger *logging.Logger, m *metrics.Metrics) *Settler {
	return &Settler{
		scheduler: scheduler,
		store:     s,
		delay:     delay,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
	}
}

func (s *Settler) Schedule(paymentID string) error {
	return s.scheduler.Schedule("settle-"+paymentID, "payment settlement", func(ctx context.Context) error {
		s.settle(ctx, paymentID)
		return nil
	}, s.delay)
}

func (s *Settler) settle(ctx context.Context, paymentID string) {
	var settled Payment
	found := s.store.Update(paymentID, func(p *Payment) {
		p.Status = PaymentCompleted
		settled = *p
	})

	log := s.logger.WithField("payment_id", paymentID)
	if !found {
		s.metrics.SettlementsMissed.Inc()
		log.Debug("settlement found no payment, ignoring")
		return
	}
	s.metrics.SettlementsCompleted.Inc()

	if s.notifier == nil {
		return
	}

	err := s.notifier.PaymentSettled(ctx, notification.PaymentEvent{
		PaymentID: settled.ID,
		UserID:    settled.UserID,
		Type:      string(settled.Type),
		Amount:    settled.Amount,
		Currency:  settled.Currency,
		Status:    string(settled.Status),
		SettledAt: time.Now().UTC(),
	})
	if err != nil {
		log.WithFields(logrus.Fields{"error": err.Error()}).Warn("settlement notification failed")
	}
}
