package currency

import (
	"github.com/finternet/finternet-backend/providers"
	"github.com/finternet/finternet-backend/providers/cryptocurrency"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/utils"
)

// NewRateProviderFromConfig picks the rate source named by RATES_PROVIDER_NAME.
func NewRateProviderFromConfig(c *utils.Config, logger *logging.Logger) (RateProvider, error) {
	switch NormalizeName(c.RatesProviderName) {
	case "", providers.Static:
		return NewStaticRateProvider(), nil
	case providers.CoinGecko:
		return cryptocurrency.NewCoinGeckoProvider(c, logger), nil
	case providers.CoinRanking:
		return cryptocurrency.NewCoinRankingProvider(c, logger), nil
	default:
		return nil, NewCurrencyError(ErrUnknownProvider, "", c.RatesProviderName)
	}
}
