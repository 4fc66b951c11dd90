package currency

import "fmt"

var (
	ErrNoExchangeRate  = fmt.Errorf("could not retrieve exchange rate for")
	ErrUnknownProvider = fmt.Errorf("unknown rates provider")
)

type CurrencyError struct {
	ErrorObj error
	Currency string
	Provider string
}

func (c *CurrencyError) Error() string {
	return c.ErrorOut()
}

func (c *CurrencyError) Unwrap() error {
	return c.ErrorObj
}

func (c *CurrencyError) ErrorOut() string {
	return fmt.Sprintf("%v: %v (provider %v)", c.ErrorObj.Error(), c.Currency, c.Provider)
}

func NewCurrencyError(err error, currency string, provider string) *CurrencyError {
	return &CurrencyError{
		ErrorObj: err,
		Currency: currency,
		Provider: provider,
	}
}
