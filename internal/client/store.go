package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"plaque-payments/internal/config"
	"plaque-payments/internal/credential"
	"plaque-payments/internal/dto"
)

// SeamlessOutcome tags the heterogeneous success shapes the store's
// seamless endpoint returns, resolved in a fixed precedence order.
type SeamlessOutcome int

const (
	// OutcomeInstructional: paymentInstructions present. Relay the
	// instructions out-of-band, do not poll.
	OutcomeInstructional SeamlessOutcome = iota
	// OutcomePollable: referenceNumber present, reconcile via status polls.
	OutcomePollable
	// OutcomeImmediate: status=="success" or success==true, nothing to do.
	OutcomeImmediate
	// OutcomeOpaque: accepted, but no recognized follow-up field. Treated
	// as success so a new response shape degrades gracefully.
	OutcomeOpaque
)

type SeamlessResult struct {
	Outcome             SeamlessOutcome
	PaymentInstructions string
	ReferenceNumber     string
	Raw                 map[string]interface{}
}

type RedirectResult struct {
	RedirectURL string
}

// StatusResult carries the typed fields the poller branches on plus every
// raw field for the ledger merge patch.
type StatusResult struct {
	Status          string
	Paid            bool
	ReferenceNumber string
	Fields          map[string]interface{}
}

// StoreClient talks to the plaque store's payments API. A bearer
// credential is attached when the session has one; only the purchases
// listing refuses to run without it.
type StoreClient interface {
	SubmitRedirect(ctx context.Context, cred credential.Source, payload *dto.RedirectPayload) (*RedirectResult, error)
	SubmitSeamless(ctx context.Context, cred credential.Source, payload *dto.SeamlessPayload) (*SeamlessResult, error)
	QueryStatus(ctx context.Context, cred credential.Source, referenceNumber string) (*StatusResult, error)
	ListPurchases(ctx context.Context, cred credential.Source) ([]dto.PurchaseRow, error)
}

type storeClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewStoreClient(cfg *config.Store) StoreClient {
	return &storeClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

func (c *storeClientImpl) SubmitRedirect(ctx context.Context, cred credential.Source, payload *dto.RedirectPayload) (*RedirectResult, error) {
	body, err := c.do(ctx, cred, http.MethodPost, "/purchase-redirect", payload)
	if err != nil {
		return nil, err
	}

	var res struct {
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode redirect response: %w", err)
	}
	if res.RedirectURL == "" {
		return nil, &GatewayError{StatusCode: http.StatusOK, Message: "No redirect URL received"}
	}
	return &RedirectResult{RedirectURL: res.RedirectURL}, nil
}

func (c *storeClientImpl) SubmitSeamless(ctx context.Context, cred credential.Source, payload *dto.SeamlessPayload) (*SeamlessResult, error) {
	body, err := c.do(ctx, cred, http.MethodPost, "/purchase-seamless", payload)
	if err != nil {
		return nil, err
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode seamless response: %w", err)
	}
	return interpretSeamless(raw), nil
}

// interpretSeamless resolves the response variant. Precedence matters: a
// response carrying both paymentInstructions and referenceNumber is
// instructional, not pollable.
func interpretSeamless(raw map[string]interface{}) *SeamlessResult {
	res := &SeamlessResult{Raw: raw}

	if instructions, ok := raw["paymentInstructions"].(string); ok && instructions != "" {
		res.Outcome = OutcomeInstructional
		res.PaymentInstructions = instructions
		return res
	}
	if ref, ok := raw["referenceNumber"].(string); ok && ref != "" {
		res.Outcome = OutcomePollable
		res.ReferenceNumber = ref
		return res
	}
	if status, ok := raw["status"].(string); ok && status == "success" {
		res.Outcome = OutcomeImmediate
		return res
	}
	if success, ok := raw["success"].(bool); ok && success {
		res.Outcome = OutcomeImmediate
		return res
	}

	res.Outcome = OutcomeOpaque
	return res
}

func (c *storeClientImpl) QueryStatus(ctx context.Context, cred credential.Source, referenceNumber string) (*StatusResult, error) {
	body, err := c.do(ctx, cred, http.MethodGet, "/status/"+referenceNumber, nil)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	res := &StatusResult{Fields: fields}
	if status, ok := fields["status"].(string); ok {
		res.Status = status
	}
	if paid, ok := fields["paid"].(bool); ok {
		res.Paid = paid
	}
	if ref, ok := fields["referenceNumber"].(string); ok {
		res.ReferenceNumber = ref
	}
	return res, nil
}

func (c *storeClientImpl) ListPurchases(ctx context.Context, cred credential.Source) ([]dto.PurchaseRow, error) {
	// Precondition, checked before any network traffic.
	if _, ok := cred.Token(); !ok {
		return nil, credential.ErrUnauthenticated
	}

	body, err := c.do(ctx, cred, http.MethodGet, "/purchases", nil)
	if err != nil {
		return nil, err
	}
	return dto.DecodePurchaseList(body)
}

func (c *storeClientImpl) do(ctx context.Context, cred credential.Source, method, endpoint string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request payload: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := cred.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrGatewayUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body),
		}
	}
	return body, nil
}

// upstreamMessage pulls a human-readable message out of an error body,
// falling back to empty so callers show a generic submission-failed text.
func upstreamMessage(body []byte) string {
	var res struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return ""
	}
	if res.Message != "" {
		return res.Message
	}
	return res.Error
}
