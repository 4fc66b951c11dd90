package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finternet/finternet-backend/internal/store"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/services/monitoring/metrics"
	"github.com/finternet/finternet-backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RateLookup is the slice of the currency service payments depend on.
type RateLookup interface {
	Rates(ctx context.Context) (map[string]float64, error)
	GetExchangeRate(ctx context.Context, code *string) float64
}

// SettlementScheduler queues the asynchronous completion of a payment.
type SettlementScheduler interface {
	Schedule(paymentID string) error
}

type PaymentService struct {
	store    *store.RecordStore[Payment]
	rates    RateLookup
	settler  SettlementScheduler
	validate *validator.Validate
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

func NewPaymentStore() *store.RecordStore[Payment] {
	return store.New(
		func(p Payment) string { return p.ID },
		func(callerID string, p Payment) bool { return p.UserID == callerID },
	)
}

func NewPaymentService(s *store.RecordStore[Payment], rates RateLookup, settler SettlementScheduler, logger *logging.Logger, m *metrics.Metrics) *PaymentService {
	m.TrackStoreSize("payment", s.Len)
	return &PaymentService{
		store:    s,
		rates:    rates,
		settler:  settler,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func IsPaymentTypeValid(v *validator.Validate, kind string) bool {
	return v.Var(kind, "required,oneof=fiat_to_crypto crypto_to_fiat") == nil
}

// CreatePayment stores a pending payment and queues its settlement. It
// returns as soon as the record is stored.
func (p *PaymentService) CreatePayment(ctx context.Context, caller utils.Caller, req CreatePaymentRequest) (Payment, error) {
	if !IsPaymentTypeValid(p.validate, req.Type) {
		return Payment{}, ErrInvalidPaymentKind
	}
	if req.Amount == nil {
		return Payment{}, fmt.Errorf("amount is required")
	}

	kind := PaymentType(req.Type)
	rate := p.rates.GetExchangeRate(ctx, req.CryptoCurrency)
	cryptoAmount := convert(*req.Amount, rate, kind)

	payment := Payment{
		ID:             uuid.New().String(),
		UserID:         caller.ID,
		Amount:         *req.Amount,
		Currency:       req.Currency,
		Type:           kind,
		Status:         PaymentPending,
		CryptoAddress:  req.CryptoAddress,
		CryptoCurrency: req.CryptoCurrency,
		CryptoAmount:   &cryptoAmount,
		ExchangeRate:   &rate,
		Timestamp:      time.Now().UTC(),
		Metadata:       req.Metadata,
	}

	p.store.Append(payment)
	p.metrics.RecordsCreated.WithLabelValues("payment").Inc()

	cryptoCurrency := "N/A"
	if payment.CryptoCurrency != nil {
		cryptoCurrency = *payment.CryptoCurrency
	}
	p.logger.WithFields(logrus.Fields{
		"payment_id":      payment.ID,
		"payment_type":    payment.Type,
		"amount":          payment.Amount,
		"currency":        payment.Currency,
		"crypto_amount":   cryptoAmount,
		"crypto_currency": cryptoCurrency,
	}).Info("Payment created")

	// The record is in the store before its settlement exists
	if err := p.settler.Schedule(payment.ID); err != nil {
		p.logger.WithError(err).WithField("payment_id", payment.ID).Warn("could not schedule settlement")
	}

	return payment, nil
}

func (p *PaymentService) ListPayments(ctx context.Context, caller utils.Caller) []Payment {
	return p.store.List(caller.ID)
}

func (p *PaymentService) GetPayment(ctx context.Context, caller utils.Caller, id string) (Payment, error) {
	payment, err := p.store.Get(caller.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		return Payment{}, ErrPaymentNotFound
	}
	if err != nil {
		return Payment{}, NewPaymentError(err, id)
	}
	return payment, nil
}

func (p *PaymentService) ExchangeRates(ctx context.Context) (map[string]float64, error) {
	return p.rates.Rates(ctx)
}

// convert prices amount in the other leg of the payment: fiat is divided by
// the coin rate, crypto is multiplied by it.
func convert(amount, rate float64, kind PaymentType) float64 {
	a := decimal.NewFromFloat(amount)
	r := decimal.NewFromFloat(rate)

	if kind == FiatToCrypto {
		if r.IsZero() {
			return 0
		}
		return a.Div(r).InexactFloat64()
	}
	return a.Mul(r).InexactFloat64()
}
