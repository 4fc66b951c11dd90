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
)

// CoinGecko coin ids for the currency codes we price
var supportedCoins = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDC": "usd-coin",
	"USDT": "tether",
	"SOL":  "solana",
	"XRP":  "ripple",
}

type CoinGeckoProvider struct {
	providers.BaseProvider
}

func NewCoinGeckoProvider(c *utils.Config, logger *logging.Logger) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		BaseProvider: providers.BaseProvider{
			Name:    providers.CoinGecko,
			BaseURL: c.CoinGeckoBaseUrl,
			APIKey:  c.CoinGeckoAccessKey,
			Client: &http.Client{
				Timeout: time.Second * 10,
			},
			Logger: logger,
		},
	}
}

// Rates returns the USD price of every supported coin, keyed by code.
func (c *CoinGeckoProvider) Rates(ctx context.Context) (map[string]float64, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid coingecko base url: %w", err)
	}

	ids := make([]string, 0, len(supportedCoins))
	for _, id := range supportedCoins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	base.Path = strings.TrimSuffix(base.Path, "/") + "/simple/price"
	params := url.Values{}
	params.Add("ids", strings.Join(ids, ","))
	params.Add("vs_currencies", "usd")
	base.RawQuery = params.Encode()

	var headers map[string]string
	if c.APIKey != "" {
		headers = map[string]string{"x-cg-demo-api-key": c.APIKey}
	}

	resp, err := c.MakeRequest(ctx, http.MethodGet, base.String(), nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var prices map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return nil, fmt.Errorf("error decoding response body: %w", err)
	}

	rates := make(map[string]float64, len(supportedCoins))
	for code, id := range supportedCoins {
		if quote, ok := prices[id]; ok {
			if usd, ok := quote["usd"]; ok && usd > 0 {
				rates[code] = usd
			}
		}
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("issues retrieving USD values from CoinGecko")
	}

	return rates, nil
}
