package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"plaque-payments/internal/client"
	"plaque-payments/internal/credential"
	"plaque-payments/internal/dto"
	"plaque-payments/internal/model"
	"plaque-payments/internal/repository"
)

// fakeDirectory counts listing calls so tests can assert refetch behavior.
type fakeDirectory struct {
	mu            sync.Mutex
	currencies    []model.Currency
	methodsByCode map[string][]model.PaymentMethod
	currencyErr   error
	methodsErr    error
	currencyCalls int
	methodCalls   int
	methodCodes   []string
}

func (f *fakeDirectory) ListActiveCurrencies(ctx context.Context) ([]model.Currency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currencyCalls++
	if f.currencyErr != nil {
		return nil, f.currencyErr
	}
	return f.currencies, nil
}

func (f *fakeDirectory) ListPaymentMethods(ctx context.Context, currencyCode string) ([]model.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methodCalls++
	f.methodCodes = append(f.methodCodes, currencyCode)
	if f.methodsErr != nil {
		return nil, f.methodsErr
	}
	return f.methodsByCode[currencyCode], nil
}

// fakeStore scripts store responses per call.
type fakeStore struct {
	mu            sync.Mutex
	redirectRes   *client.RedirectResult
	redirectErr   error
	seamlessRes   *client.SeamlessResult
	seamlessErr   error
	statusRes     *client.StatusResult
	statusErr     error
	purchases     []dto.PurchaseRow
	purchasesErr  error
	statusCalls   int
	statusEntered chan struct{}
	statusRelease chan struct{}
}

func (f *fakeStore) SubmitRedirect(ctx context.Context, cred credential.Source, payload *dto.RedirectPayload) (*client.RedirectResult, error) {
	return f.redirectRes, f.redirectErr
}

func (f *fakeStore) SubmitSeamless(ctx context.Context, cred credential.Source, payload *dto.SeamlessPayload) (*client.SeamlessResult, error) {
	return f.seamlessRes, f.seamlessErr
}

func (f *fakeStore) QueryStatus(ctx context.Context, cred credential.Source, referenceNumber string) (*client.StatusResult, error) {
	f.mu.Lock()
	f.statusCalls++
	f.mu.Unlock()

	if f.statusEntered != nil {
		f.statusEntered <- struct{}{}
	}
	if f.statusRelease != nil {
		<-f.statusRelease
	}
	return f.statusRes, f.statusErr
}

func (f *fakeStore) ListPurchases(ctx context.Context, cred credential.Source) ([]dto.PurchaseRow, error) {
	return f.purchases, f.purchasesErr
}

// fakeLedger is an in-memory LedgerRepository recording applied patches.
type fakeLedger struct {
	mu      sync.Mutex
	plaques map[string]*model.Plaque
	patches []map[string]interface{}
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{plaques: map[string]*model.Plaque{}}
}

func (f *fakeLedger) Replace(ctx context.Context, plaques []*model.Plaque) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plaques = map[string]*model.Plaque{}
	for _, p := range plaques {
		f.plaques[p.ID] = p
	}
	return nil
}

func (f *fakeLedger) List(ctx context.Context) ([]*model.Plaque, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Plaque, 0, len(f.plaques))
	for _, p := range f.plaques {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeLedger) FindByID(ctx context.Context, id string) (*model.Plaque, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.plaques[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedger) ApplyPatch(ctx context.Context, key repository.PatchKey, patch map[string]interface{}) (*model.Plaque, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.plaques[key.ID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.patches = append(f.patches, patch)
	if s, ok := patch["status"].(string); ok {
		p.Status = model.NormalizeStatus(s)
	}
	if paid, ok := patch["paid"].(bool); ok {
		p.Paid = paid
		if paid {
			p.Status = model.StatusCompleted
		}
	}
	return p, nil
}

func (f *fakeLedger) TotalSpent(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, p := range f.plaques {
		total += p.Amount
	}
	return total, nil
}

func (f *fakeLedger) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}
