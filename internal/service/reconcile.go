package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"plaque-payments/internal/client"
	"plaque-payments/internal/credential"
	"plaque-payments/internal/metrics"
	"plaque-payments/internal/repository"
)

// Reconciler queries current purchase status and merges the result back
// into the ledger. Polling is best-effort: failures are logged, never
// surfaced, and never mutate the ledger.
type Reconciler struct {
	store   client.StoreClient
	ledger  repository.LedgerRepository
	metrics *metrics.EngineMetrics
	log     *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewReconciler(store client.StoreClient, ledger repository.LedgerRepository, m *metrics.EngineMetrics, log *zap.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		ledger:   ledger,
		metrics:  m,
		log:      log,
		inflight: map[string]struct{}{},
	}
}

// Poll reconciles one purchase by reference number and reports whether a
// patch was applied. Only one poll per reference may be in flight; a
// duplicate trigger is dropped, not queued.
func (r *Reconciler) Poll(ctx context.Context, cred credential.Source, key repository.PatchKey, referenceNumber string) bool {
	if referenceNumber == "" {
		return false
	}
	if !r.begin(referenceNumber) {
		r.metrics.StatusPoll("dropped")
		return false
	}
	defer r.end(referenceNumber)

	res, err := r.store.QueryStatus(ctx, cred, referenceNumber)
	if err != nil {
		r.metrics.StatusPoll("failed")
		r.log.Warn("status poll failed",
			zap.String("reference", referenceNumber),
			zap.Error(err))
		return false
	}
	if ctx.Err() != nil {
		// The caller went away while the query was in flight; the result
		// must be discarded, not applied.
		r.metrics.StatusPoll("discarded")
		return false
	}

	if _, err := r.ledger.ApplyPatch(ctx, key, res.Fields); err != nil {
		r.metrics.StatusPoll("failed")
		r.log.Warn("ledger patch failed",
			zap.String("reference", referenceNumber),
			zap.Error(err))
		return false
	}

	r.metrics.StatusPoll("applied")
	r.metrics.LedgerPatch()
	r.log.Info("purchase status reconciled",
		zap.String("reference", referenceNumber),
		zap.String("status", res.Status),
		zap.Bool("paid", res.Paid))
	return true
}

// RunPeriodic is the timer-driven variant: every interval it polls each
// non-terminal ledgered purchase that holds a reference number, through
// the same single-flight and merge path as button-driven polls. Blocks
// until ctx is done.
func (r *Reconciler) RunPeriodic(ctx context.Context, interval time.Duration, cred credential.Source) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx, cred)
		}
	}
}

func (r *Reconciler) sweep(ctx context.Context, cred credential.Source) {
	plaques, err := r.ledger.List(ctx)
	if err != nil {
		r.log.Warn("reconciliation sweep: list ledger", zap.Error(err))
		return
	}
	for _, p := range plaques {
		if p.Status.Terminal() || p.ReferenceNumber == "" {
			continue
		}
		key := repository.PatchKey{ID: p.ID, RemoteID: p.RemoteID}
		r.Poll(ctx, cred, key, p.ReferenceNumber)
	}
}

func (r *Reconciler) begin(referenceNumber string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.inflight[referenceNumber]; ok {
		return false
	}
	r.inflight[referenceNumber] = struct{}{}
	return true
}

func (r *Reconciler) end(referenceNumber string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, referenceNumber)
}
