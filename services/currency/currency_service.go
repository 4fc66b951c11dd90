package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const ratesCacheKey = "rates"

// CurrencyService fronts a RateProvider with a short lived cache and falls
// back to the static table when the live source is unavailable.
type CurrencyService struct {
	provider RateProvider
	fallback RateProvider
	cache    *cache.Cache
	ttl      time.Duration
	logger   *logging.Logger
}

func NewCurrencyService(provider RateProvider, ttl time.Duration, logger *logging.Logger) *CurrencyService {
	return &CurrencyService{
		provider: provider,
		fallback: NewStaticRateProvider(),
		cache:    cache.New(ttl, 2*ttl),
		ttl:      ttl,
		logger:   logger,
	}
}

// Rates returns the full rate table.
func (c *CurrencyService) Rates(ctx context.Context) (map[string]float64, error) {
	if cached, found := c.cache.Get(ratesCacheKey); found {
		return copyRates(cached.(map[string]float64)), nil
	}

	live, err := c.provider.Rates(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("rates provider unavailable, serving static rates")
		return c.fallback.Rates(ctx)
	}

	// Static entries fill gaps the live source does not quote (fiat mostly)
	merged, _ := c.fallback.Rates(ctx)
	for code, rate := range live {
		if rate > 0 {
			merged[NormalizeCode(code)] = rate
		}
	}

	if c.ttl > 0 {
		c.cache.Set(ratesCacheKey, merged, c.ttl)
	}
	return copyRates(merged), nil
}

// GetExchangeRate resolves a single currency. Absent or unknown codes get
// DefaultRate, matching how payments are priced.
func (c *CurrencyService) GetExchangeRate(ctx context.Context, code *string) float64 {
	if code == nil || *code == "" {
		return DefaultRate
	}

	rates, err := c.Rates(ctx)
	if err != nil {
		c.logger.Error(NewCurrencyError(ErrNoExchangeRate, *code, fmt.Sprintf("%T", c.provider)).ErrorOut())
		return DefaultRate
	}

	rate, ok := rates[NormalizeCode(*code)]
	if !ok || rate <= 0 {
		c.logger.WithFields(logrus.Fields{"currency": *code}).Debug("no rate for currency, using default")
		return DefaultRate
	}
	return rate
}

// Flush drops cached rates.
func (c *CurrencyService) Flush() {
	c.cache.Flush()
}
