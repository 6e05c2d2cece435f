package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plaque-payments/internal/client"
	"plaque-payments/internal/credential"
	"plaque-payments/internal/model"
	"plaque-payments/internal/repository"
)

func seededLedger(t *testing.T) *fakeLedger {
	t.Helper()
	ledger := newFakeLedger()
	require.NoError(t, ledger.Replace(context.Background(), []*model.Plaque{
		{ID: "p1", ReferenceNumber: "REF-1", Status: model.StatusPending, Amount: 10},
	}))
	return ledger
}

func TestPollAppliesPatch(t *testing.T) {
	ledger := seededLedger(t)
	store := &fakeStore{
		statusRes: &client.StatusResult{
			Status: "paid",
			Paid:   true,
			Fields: map[string]interface{}{"status": "paid", "paid": true},
		},
	}
	rec := NewReconciler(store, ledger, nil, zap.NewNop())

	applied := rec.Poll(context.Background(), credential.Static("tok"), repository.PatchKey{ID: "p1"}, "REF-1")
	assert.True(t, applied)

	p, err := ledger.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, p.Status)
	assert.True(t, p.Paid)
}

func TestPollEmptyReference(t *testing.T) {
	ledger := seededLedger(t)
	store := &fakeStore{}
	rec := NewReconciler(store, ledger, nil, zap.NewNop())

	applied := rec.Poll(context.Background(), credential.None(), repository.PatchKey{ID: "p1"}, "")
	assert.False(t, applied)
	assert.Equal(t, 0, store.statusCalls)
}

func TestPollSingleFlight(t *testing.T) {
	ledger := seededLedger(t)
	store := &fakeStore{
		statusRes:     &client.StatusResult{Fields: map[string]interface{}{"status": "pending"}},
		statusEntered: make(chan struct{}, 1),
		statusRelease: make(chan struct{}),
	}
	rec := NewReconciler(store, ledger, nil, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rec.Poll(context.Background(), credential.None(), repository.PatchKey{ID: "p1"}, "REF-1")
	}()

	// Wait until the first poll is parked inside QueryStatus.
	<-store.statusEntered

	applied := rec.Poll(context.Background(), credential.None(), repository.PatchKey{ID: "p1"}, "REF-1")
	assert.False(t, applied, "duplicate poll is dropped while the first is in flight")
	assert.Equal(t, 1, store.statusCalls)

	close(store.statusRelease)
	wg.Wait()

	// With the first poll done the reference is pollable again.
	store.statusRelease = nil
	store.statusEntered = nil
	applied = rec.Poll(context.Background(), credential.None(), repository.PatchKey{ID: "p1"}, "REF-1")
	assert.True(t, applied)
}

func TestPollQueryFailureLeavesLedgerUntouched(t *testing.T) {
	ledger := seededLedger(t)
	store := &fakeStore{statusErr: errors.New("gateway timeout")}
	rec := NewReconciler(store, ledger, nil, zap.NewNop())

	applied := rec.Poll(context.Background(), credential.None(), repository.PatchKey{ID: "p1"}, "REF-1")
	assert.False(t, applied)
	assert.Equal(t, 0, ledger.patchCount())

	p, err := ledger.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, p.Status)
}

func TestPollCancelledContextDiscardsResult(t *testing.T) {
	ledger := seededLedger(t)
	store := &fakeStore{
		statusRes:     &client.StatusResult{Status: "paid", Fields: map[string]interface{}{"status": "paid"}},
		statusEntered: make(chan struct{}, 1),
		statusRelease: make(chan struct{}),
	}
	rec := NewReconciler(store, ledger, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	var applied bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		applied = rec.Poll(ctx, credential.None(), repository.PatchKey{ID: "p1"}, "REF-1")
	}()

	<-store.statusEntered
	cancel()
	close(store.statusRelease)
	wg.Wait()

	assert.False(t, applied)
	assert.Equal(t, 0, ledger.patchCount(), "in-flight result is discarded on cancel")
}

func TestSweepPollsNonTerminalWithReference(t *testing.T) {
	ledger := newFakeLedger()
	require.NoError(t, ledger.Replace(context.Background(), []*model.Plaque{
		{ID: "p1", ReferenceNumber: "REF-1", Status: model.StatusPending},
		{ID: "p2", ReferenceNumber: "REF-2", Status: model.StatusPaid},
		{ID: "p3", ReferenceNumber: "", Status: model.StatusPending},
	}))
	store := &fakeStore{
		statusRes: &client.StatusResult{Fields: map[string]interface{}{"status": "pending"}},
	}
	rec := NewReconciler(store, ledger, nil, zap.NewNop())

	rec.sweep(context.Background(), credential.Static("tok"))
	assert.Equal(t, 1, store.statusCalls, "terminal and reference-less records are skipped")
}

func TestRunPeriodicStopsOnCancel(t *testing.T) {
	ledger := newFakeLedger()
	store := &fakeStore{}
	rec := NewReconciler(store, ledger, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.RunPeriodic(ctx, 10*time.Millisecond, credential.None())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPeriodic did not stop after cancel")
	}
}
