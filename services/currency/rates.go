package currency

import (
	"context"
	"strings"
)

// DefaultRate is used for absent or unknown currencies.
const DefaultRate = 1.0

// RateProvider returns conversion rates keyed by upper case currency code.
// Implementations must return a map the caller is free to modify.
type RateProvider interface {
	Rates(ctx context.Context) (map[string]float64, error)
}

var staticRates = map[string]float64{
	"BTC":  50000.0,
	"ETH":  3000.0,
	"USDC": 1.0,
	"USD":  1.0,
	"EUR":  0.85,
	"GBP":  0.75,
}

type StaticRateProvider struct {
	rates map[string]float64
}

func NewStaticRateProvider() *StaticRateProvider {
	return &StaticRateProvider{rates: staticRates}
}

func (s *StaticRateProvider) Rates(_ context.Context) (map[string]float64, error) {
	return copyRates(s.rates), nil
}

// NormalizeCode upper cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func IsCurrencyValid(code string) bool {
	_, ok := staticRates[NormalizeCode(code)]
	return ok
}

func copyRates(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
