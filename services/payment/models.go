package payment

import (
	"encoding/json"
	"time"
)

type PaymentType string

const (
	FiatToCrypto PaymentType = "fiat_to_crypto"
	CryptoToFiat PaymentType = "crypto_to_fiat"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Payment is owned by the single user in UserID. Status is the only field
// that changes after creation.
type Payment struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Amount         float64         `json:"amount"`
	Currency       string          `json:"currency"`
	Type           PaymentType     `json:"payment_type"`
	Status         PaymentStatus   `json:"status"`
	CryptoAddress  *string         `json:"crypto_address"`
	CryptoCurrency *string         `json:"crypto_currency"`
	CryptoAmount   *float64        `json:"crypto_amount"`
	ExchangeRate   *float64        `json:"exchange_rate"`
	Timestamp      time.Time       `json:"timestamp"`
	Metadata       json.RawMessage `json:"metadata"`
}

type CreatePaymentRequest struct {
	Amount         *float64        `json:"amount" binding:"required"`
	Currency       string          `json:"currency" binding:"required"`
	Type           string          `json:"payment_type" binding:"required"`
	CryptoAddress  *string         `json:"crypto_address"`
	CryptoCurrency *string         `json:"crypto_currency"`
	Metadata       json.RawMessage `json:"metadata"`
}

type ExchangeRatesResponse struct {
	Rates     map[string]float64 `json:"rates"`
	Timestamp time.Time          `json:"timestamp"`
}
