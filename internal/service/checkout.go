package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"plaque-payments/internal/client"
	"plaque-payments/internal/credential"
	"plaque-payments/internal/dto"
	"plaque-payments/internal/intent"
	"plaque-payments/internal/metrics"
	"plaque-payments/internal/model"
	"plaque-payments/internal/repository"
)

// CheckoutService drives a purchase from directory discovery through
// submission, and keeps the local plaque ledger mirrored from the store.
type CheckoutService struct {
	directory      client.DirectoryClient
	store          client.StoreClient
	ledger         repository.LedgerRepository
	metrics        *metrics.EngineMetrics
	log            *zap.Logger
	supportContact string

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewCheckoutService(
	directory client.DirectoryClient,
	store client.StoreClient,
	ledger repository.LedgerRepository,
	m *metrics.EngineMetrics,
	log *zap.Logger,
	supportContact string,
) *CheckoutService {
	return &CheckoutService{
		directory:      directory,
		store:          store,
		ledger:         ledger,
		metrics:        m,
		log:            log,
		supportContact: supportContact,
		sessions:       map[string]*Session{},
	}
}

// Session returns the checkout session for the given key, creating it
// on first use. Sessions are independent; only the ledger is shared.
func (s *CheckoutService) Session(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = newSession(s.directory, s.metrics, s.log)
		s.sessions[key] = sess
	}
	return sess
}

// Currencies loads the active currency listing for the session and
// resolves the default selection.
func (s *CheckoutService) Currencies(ctx context.Context, sessionKey string) (*dto.CurrencyListing, error) {
	currencies, def, err := s.Session(sessionKey).LoadCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]dto.CurrencyView, len(currencies))
	for i, c := range currencies {
		views[i] = dto.CurrencyView{
			Code:            c.Code,
			Name:            c.Name,
			DefaultCurrency: c.DefaultCurrency,
			RateToDefault:   c.RateToDefault,
		}
	}
	return &dto.CurrencyListing{Currencies: views, DefaultCurrency: def}, nil
}

// Methods switches the session currency and returns the fresh method
// listing for it.
func (s *CheckoutService) Methods(ctx context.Context, sessionKey, currencyCode string) ([]model.PaymentMethod, error) {
	return s.Session(sessionKey).SelectCurrency(ctx, currencyCode)
}

// Submit validates the request, routes it to the redirect or seamless
// path and interprets the store's answer.
func (s *CheckoutService) Submit(ctx context.Context, cred credential.Source, sessionKey string, req *dto.PurchaseRequest) (*dto.PurchaseOutcome, error) {
	sess := s.Session(sessionKey)

	if req.PaymentMethodID != "" {
		if err := sess.SelectMethod(req.PaymentMethodID, req.PaymentOption); err != nil {
			return nil, err
		}
	}
	method, option := sess.SelectedMethod()
	if req.CurrencyCode == "" {
		req.CurrencyCode = sess.Currency()
	}

	in, err := intent.Build(req, method, option)
	if err != nil {
		return nil, err
	}

	if in.Redirect {
		return s.submitRedirect(ctx, cred, in)
	}
	return s.submitSeamless(ctx, cred, in)
}

func (s *CheckoutService) submitRedirect(ctx context.Context, cred credential.Source, in *intent.Intent) (*dto.PurchaseOutcome, error) {
	res, err := s.store.SubmitRedirect(ctx, cred, in.RedirectPayload)
	if err != nil {
		s.metrics.SubmissionFailure("redirect", failureReason(err))
		return nil, err
	}

	s.metrics.Submission("redirect", "redirect")
	s.log.Info("redirect purchase initiated",
		zap.String("album_id", in.RedirectPayload.AlbumID),
		zap.String("method", in.Method.Code))

	// Control passes to the gateway's hosted page from here; completion
	// arrives out-of-band via the store's callback.
	return &dto.PurchaseOutcome{
		Flow:        "redirect",
		Outcome:     "redirect",
		RedirectURL: res.RedirectURL,
	}, nil
}

func (s *CheckoutService) submitSeamless(ctx context.Context, cred credential.Source, in *intent.Intent) (*dto.PurchaseOutcome, error) {
	payload := in.SeamlessPayload
	res, err := s.store.SubmitSeamless(ctx, cred, payload)
	if err != nil {
		s.metrics.SubmissionFailure("seamless", failureReason(err))
		return nil, err
	}

	out := &dto.PurchaseOutcome{Flow: "seamless"}
	switch res.Outcome {
	case client.OutcomeInstructional:
		out.Outcome = "instructions"
		out.PaymentInstructions = res.PaymentInstructions
		out.RelayMessage = s.relayMessage(in, res.PaymentInstructions)
	case client.OutcomePollable:
		out.Outcome = "pollable"
		out.ReferenceNumber = res.ReferenceNumber
	default:
		// Immediate and opaque successes both end the flow here.
		out.Outcome = "success"
		out.Message = "Payment initiated successfully! Please check your payment method for confirmation."
	}

	s.metrics.Submission("seamless", out.Outcome)
	s.log.Info("seamless purchase initiated",
		zap.String("album_id", payload.AlbumID),
		zap.String("method", payload.PaymentMethodCode),
		zap.String("outcome", out.Outcome))
	return out, nil
}

// relayMessage is the text handed to the out-of-band support channel for
// instructional payment methods.
func (s *CheckoutService) relayMessage(in *intent.Intent, instructions string) string {
	p := in.SeamlessPayload
	return fmt.Sprintf(
		"Payment instructions for %s: %s\nAmount: %s %s\nPayment Method: %s\nAlbum: %s by %s\nSupport: %s",
		p.AlbumDetails.Name,
		instructions,
		p.CurrencyCode,
		in.Total.StringFixed(2),
		in.Method.Name,
		p.AlbumDetails.Name,
		p.AlbumDetails.Artist,
		s.supportContact,
	)
}

// RefreshPurchases repopulates the ledger mirror wholesale from the
// store's purchases listing and returns the refreshed records. Requires
// a session credential.
func (s *CheckoutService) RefreshPurchases(ctx context.Context, cred credential.Source) ([]*model.Plaque, error) {
	rows, err := s.store.ListPurchases(ctx, cred)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		// Host went away mid-flight; discard rather than apply.
		return nil, ctx.Err()
	}

	plaques := make([]*model.Plaque, len(rows))
	for i, row := range rows {
		plaques[i] = row.ToPlaque()
	}
	if err := s.ledger.Replace(ctx, plaques); err != nil {
		return nil, fmt.Errorf("replace ledger: %w", err)
	}
	s.metrics.LedgerRefresh()

	return s.ledger.List(ctx)
}

// FindPlaque looks a record up by local or store-side id.
func (s *CheckoutService) FindPlaque(ctx context.Context, id string) (*model.Plaque, error) {
	return s.ledger.FindByID(ctx, id)
}

// ListLedger returns the current mirror without refreshing it.
func (s *CheckoutService) ListLedger(ctx context.Context) ([]*model.Plaque, error) {
	return s.ledger.List(ctx)
}

// TotalSpent sums the amount of every ledgered purchase, regardless of
// status.
func (s *CheckoutService) TotalSpent(ctx context.Context) (float64, error) {
	return s.ledger.TotalSpent(ctx)
}

func failureReason(err error) string {
	if errors.Is(err, client.ErrGatewayUnreachable) {
		return "unreachable"
	}
	return "gateway"
}
