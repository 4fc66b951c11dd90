package payment

import "fmt"

var (
	ErrPaymentNotFound    = fmt.Errorf("payment not found")
	ErrInvalidPaymentKind = fmt.Errorf("invalid payment type, must be fiat_to_crypto or crypto_to_fiat")
)

type PaymentError struct {
	ErrorObj  error
	PaymentID string
}

func (p *PaymentError) Error() string {
	return p.ErrorObj.Error()
}

func (p *PaymentError) Unwrap() error {
	return p.ErrorObj
}

func (p *PaymentError) ErrorOut() string {
	return fmt.Sprintf("%v: %v", p.ErrorObj.Error(), p.PaymentID)
}

func NewPaymentError(err error, paymentID string) *PaymentError {
	return &PaymentError{
		ErrorObj:  err,
		PaymentID: paymentID,
	}
}
