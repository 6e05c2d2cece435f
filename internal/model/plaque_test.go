package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PurchaseStatus
	}{
		{name: "paid lowercase", in: "paid", want: StatusPaid},
		{name: "paid uppercase", in: "PAID", want: StatusPaid},
		{name: "success maps to paid", in: "success", want: StatusPaid},
		{name: "completed mixed case", in: "Completed", want: StatusCompleted},
		{name: "failed", in: "failed", want: StatusFailed},
		{name: "cancelled", in: "CANCELLED", want: StatusCancelled},
		{name: "cancelled us spelling", in: "canceled", want: StatusCancelled},
		{name: "pending", in: "pending", want: StatusPending},
		{name: "unknown is pending", in: "processing", want: StatusPending},
		{name: "empty is pending", in: "", want: StatusPending},
		{name: "whitespace trimmed", in: " paid ", want: StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.in))
		})
	}
}

func TestPurchaseStatusTerminal(t *testing.T) {
	assert.True(t, StatusPaid.TerminalSuccess())
	assert.True(t, StatusCompleted.TerminalSuccess())
	assert.True(t, StatusFailed.TerminalFailure())
	assert.True(t, StatusCancelled.TerminalFailure())

	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusPaid.TerminalFailure())
	assert.False(t, StatusFailed.TerminalSuccess())
}
