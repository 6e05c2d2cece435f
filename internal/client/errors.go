package client

import (
	"errors"
	"fmt"
)

// ErrGatewayUnreachable covers transport failures and timeouts alike;
// callers must treat both identically and never retry automatically.
var ErrGatewayUnreachable = errors.New("payment gateway unreachable")

// GatewayError is a non-2xx answer from the submission/status API.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway error: %s (status %d)", e.Message, e.StatusCode)
}

// DirectoryUnavailableError means a currency or payment-method listing
// could not be fetched. Recoverable: the UI offers a retry.
type DirectoryUnavailableError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *DirectoryUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directory unavailable: %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("directory unavailable: %s returned status %d", e.Endpoint, e.StatusCode)
}

func (e *DirectoryUnavailableError) Unwrap() error {
	return e.Err
}
