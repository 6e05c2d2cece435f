package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"plaque-payments/internal/config"
	"plaque-payments/internal/model"
)

// DirectoryClient resolves what is currently purchasable: active
// currencies and the payment methods valid for each of them.
type DirectoryClient interface {
	ListActiveCurrencies(ctx context.Context) ([]model.Currency, error)
	ListPaymentMethods(ctx context.Context, currencyCode string) ([]model.PaymentMethod, error)
}

type pesepayClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewPesepayClient(cfg *config.Pesepay) DirectoryClient {
	return &pesepayClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

func (c *pesepayClientImpl) ListActiveCurrencies(ctx context.Context) ([]model.Currency, error) {
	var currencies []model.Currency
	if err := c.getJSON(ctx, "/currencies/active", &currencies); err != nil {
		return nil, err
	}
	return currencies, nil
}

func (c *pesepayClientImpl) ListPaymentMethods(ctx context.Context, currencyCode string) ([]model.PaymentMethod, error) {
	endpoint := "/payment-methods/for-currency?currencyCode=" + url.QueryEscape(currencyCode)

	var methods []model.PaymentMethod
	if err := c.getJSON(ctx, endpoint, &methods); err != nil {
		return nil, err
	}

	active := make([]model.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

func (c *pesepayClientImpl) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DirectoryUnavailableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DirectoryUnavailableError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DirectoryUnavailableError{Endpoint: endpoint, Err: fmt.Errorf("decode listing: %w", err)}
	}
	return nil
}
