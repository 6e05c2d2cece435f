package service

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"plaque-payments/internal/client"
	"plaque-payments/internal/intent"
	"plaque-payments/internal/metrics"
	"plaque-payments/internal/model"
)

// DefaultCurrency resolves the selection policy over a fresh listing:
// USD when present and active, else the defaultCurrency-flagged entry,
// else the first entry in listing order. Deterministic, and re-applied
// every time the list is loaded.
func DefaultCurrency(currencies []model.Currency) string {
	for _, c := range currencies {
		if c.Code == "USD" && c.Active {
			return c.Code
		}
	}
	for _, c := range currencies {
		if c.DefaultCurrency {
			return c.Code
		}
	}
	if len(currencies) > 0 {
		return currencies[0].Code
	}
	return ""
}

// Session is one purchase session's selection state: loaded currencies,
// the selected currency, the methods valid for it and the selected
// method/option. Method listings are refetched on every currency change.
type Session struct {
	directory client.DirectoryClient
	metrics   *metrics.EngineMetrics
	log       *zap.Logger

	mu         sync.Mutex
	currencies []model.Currency
	currency   string
	methods    []model.PaymentMethod
	methodID   string
	option     string
}

func newSession(directory client.DirectoryClient, m *metrics.EngineMetrics, log *zap.Logger) *Session {
	return &Session{
		directory: directory,
		metrics:   m,
		log:       log,
	}
}

// LoadCurrencies fetches the active currencies, re-applies the default
// selection policy and loads methods for the resolved default. Exactly
// one method listing is triggered.
func (s *Session) LoadCurrencies(ctx context.Context) ([]model.Currency, string, error) {
	currencies, err := s.directory.ListActiveCurrencies(ctx)
	if err != nil {
		s.metrics.DirectoryFetch("currencies", "error")
		return nil, "", err
	}
	s.metrics.DirectoryFetch("currencies", "ok")

	s.mu.Lock()
	s.currencies = currencies
	s.mu.Unlock()

	def := DefaultCurrency(currencies)
	if def == "" {
		return currencies, "", nil
	}
	if _, err := s.SelectCurrency(ctx, def); err != nil {
		return currencies, def, err
	}
	return currencies, def, nil
}

// SelectCurrency switches the session currency and refetches the method
// listing. If the previously selected method is gone from the fresh
// list, the method and option selection are both cleared; a stale method
// id must never survive a currency change.
func (s *Session) SelectCurrency(ctx context.Context, code string) ([]model.PaymentMethod, error) {
	methods, err := s.directory.ListPaymentMethods(ctx, code)
	if err != nil {
		s.metrics.DirectoryFetch("payment-methods", "error")
		s.mu.Lock()
		s.currency = code
		s.methods = nil
		s.mu.Unlock()
		return nil, err
	}
	s.metrics.DirectoryFetch("payment-methods", "ok")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency = code
	s.methods = methods

	if s.methodID != "" && !containsMethod(methods, s.methodID) {
		s.log.Debug("clearing stale method selection",
			zap.String("method_id", s.methodID),
			zap.String("currency", code))
		s.methodID = ""
		s.option = ""
	}
	return methods, nil
}

// SelectMethod picks a method (by directory id) and an option under it.
// The method must be in the current listing.
func (s *Session) SelectMethod(methodID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsMethod(s.methods, methodID) {
		return &intent.ValidationError{
			Code:    intent.CodeMissingSelection,
			Message: "Selected payment method not found",
		}
	}
	s.methodID = methodID
	s.option = option
	return nil
}

// SelectedMethod returns the currently selected method and option, or
// nil when nothing valid is selected.
func (s *Session) SelectedMethod() (*model.PaymentMethod, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.methods {
		if methodKey(&s.methods[i]) == s.methodID {
			m := s.methods[i]
			return &m, s.option
		}
	}
	return nil, ""
}

// Currency returns the selected currency code.
func (s *Session) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

func containsMethod(methods []model.PaymentMethod, methodID string) bool {
	for i := range methods {
		if methodKey(&methods[i]) == methodID {
			return true
		}
	}
	return false
}

func methodKey(m *model.PaymentMethod) string {
	return strconv.Itoa(m.ID)
}
