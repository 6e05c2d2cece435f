package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plaque-payments/internal/model"
)

func TestDecodePurchaseList(t *testing.T) {
	row := `{"_id":"p1","plaqueType":"Gold","amount":25.5,"status":"pending","referenceNumber":"R-9"}`

	tests := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[` + row + `]`},
		{name: "data envelope", body: `{"data":[` + row + `]}`},
		{name: "success envelope", body: `{"success":true,"data":[` + row + `]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := DecodePurchaseList([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "p1", rows[0].MongoID)
			assert.Equal(t, "Gold", rows[0].PlaqueType)
			assert.Equal(t, 25.5, rows[0].Amount)
			assert.Equal(t, "R-9", rows[0].ReferenceNumber)
		})
	}
}

func TestDecodePurchaseListEmpty(t *testing.T) {
	rows, err := DecodePurchaseList([]byte(`{"success":true,"data":[]}`))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = DecodePurchaseList([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodePurchaseListMalformed(t *testing.T) {
	_, err := DecodePurchaseList([]byte(`not json`))
	assert.Error(t, err)
}

func TestPurchaseRowToPlaque(t *testing.T) {
	row := PurchaseRow{
		MongoID:         "abc123",
		PlaqueType:      "Platinum",
		Amount:          40,
		Status:          "paid",
		Paid:            true,
		ReferenceNumber: "REF-1",
		PollURLLegacy:   "https://gateway.example/poll/REF-1",
		Reason:          `Plaque purchase for "Gemma" by Jahprayzah`,
		Album: &purchaseRowAlbum{
			ID:       "album-1",
			Title:    "Gemma",
			CoverArt: "https://cdn.example/gemma.jpg",
		},
	}

	p := row.ToPlaque()
	assert.Equal(t, "abc123", p.ID)
	assert.Equal(t, "abc123", p.RemoteID)
	assert.Equal(t, model.StatusPaid, p.Status)
	assert.True(t, p.Paid)
	assert.Equal(t, "USD", p.Currency, "missing currency defaults to USD")
	assert.Equal(t, "https://gateway.example/poll/REF-1", p.PollURL, "legacy pollurl key accepted")
	assert.Equal(t, "album-1", p.AlbumID)
	assert.Equal(t, "Gemma", p.AlbumTitle)
	assert.Equal(t, "Jahprayzah", p.AlbumArtist)
}

func TestPurchaseRowToPlaqueFallbacks(t *testing.T) {
	row := PurchaseRow{ID: "plain-id"}
	p := row.ToPlaque()
	assert.Equal(t, "plain-id", p.ID, "id used when _id absent")
	assert.Equal(t, "Plaque", p.PlaqueType)
	assert.Equal(t, model.StatusPending, p.Status)
}

func TestArtistFromReason(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{name: "quoted album", reason: `Plaque purchase for "Gemma" by Jahprayzah`, want: "Jahprayzah"},
		{name: "trailing quote stripped", reason: `Support by Winky D"`, want: `Winky D`},
		{name: "no by clause", reason: "Support payment", want: ""},
		{name: "empty", reason: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtistFromReason(tt.reason))
		})
	}
}
