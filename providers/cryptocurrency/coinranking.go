package cryptocurrency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/finternet/finternet-backend/providers"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/utils"
	"github.com/shopspring/decimal"
)

type coinRankingCoin struct {
	UUID   string `json:"uuid"`
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type coinRankingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Coins []coinRankingCoin `json:"coins"`
	} `json:"data"`
}

type CoinRankingProvider struct {
	providers.BaseProvider
}

func NewCoinRankingProvider(c *utils.Config, logger *logging.Logger) *CoinRankingProvider {
	return &CoinRankingProvider{
		BaseProvider: providers.BaseProvider{
			Name:    providers.CoinRanking,
			BaseURL: c.CoinRankingBaseUrl,
			APIKey:  c.CoinRankingAccessKey,
			Client:  &http.Client{Timeout: 10 * time.Second},
			Logger:  logger,
		},
	}
}

// Rates returns the USD price of every supported coin, keyed by symbol.
// CoinRanking quotes prices as decimal strings.
func (p *CoinRankingProvider) Rates(ctx context.Context) (map[string]float64, error) {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid coinranking base url: %w", err)
	}

	symbols := make([]string, 0, len(supportedCoins))
	for code := range supportedCoins {
		symbols = append(symbols, code)
	}
	sort.Strings(symbols)

	base.Path = strings.TrimSuffix(base.Path, "/") + "/coins"
	params := url.Values{}
	for _, s := range symbols {
		params.Add("symbols[]", s)
	}
	base.RawQuery = params.Encode()

	var headers map[string]string
	if p.APIKey != "" {
		headers = map[string]string{"x-access-token": p.APIKey}
	}

	response, err := p.MakeRequest(ctx, http.MethodGet, base.String(), nil, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get coin prices: %s", response.Status)
	}

	var result coinRankingResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("API request unsuccessful: %s %s", result.Status, result.Message)
	}

	rates := make(map[string]float64, len(result.Data.Coins))
	for _, coin := range result.Data.Coins {
		code := strings.ToUpper(coin.Symbol)
		if _, ok := supportedCoins[code]; !ok {
			continue
		}
		// several coins can share a symbol, the first (highest ranked) wins
		if _, seen := rates[code]; seen {
			continue
		}
		price, err := decimal.NewFromString(coin.Price)
		if err != nil || !price.IsPositive() {
			continue
		}
		rates[code] = price.InexactFloat64()
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("issues retrieving USD values from CoinRanking")
	}

	return rates, nil
}
