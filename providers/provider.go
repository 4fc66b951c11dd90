package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/sirupsen/logrus"
)

const (
	Static      = "static"
	CoinGecko   = "coingecko"
	CoinRanking = "coinranking"
)

// BaseProvider contains common fields and methods
type BaseProvider struct {
	Name    string
	BaseURL string
	APIKey  string
	Client  *http.Client
	Logger  *logging.Logger
}

// MakeRequest sends a JSON request. extraHeaders may overwrite the default
// Authorization header for APIs that expect the key elsewhere.
func (p *BaseProvider) MakeRequest(ctx context.Context, method, url string, body interface{}, extraHeaders map[string]string) (*http.Response, error) {
	var payload *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewBuffer(jsonBody)
	}

	var req *http.Request
	var err error
	if payload != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, payload)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, err
	}

	if p.Logger != nil {
		p.Logger.WithFields(logrus.Fields{
			"provider": p.Name,
			"method":   method,
			"url":      url,
		}).Debug("External Request")
	}

	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	return p.Client.Do(req)
}

func (bp *BaseProvider) GetName() string { return bp.Name }
