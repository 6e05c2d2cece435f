package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"plaque-payments/internal/model"
)

// PurchaseRow is one entry of the store's purchases listing. The store has
// shipped several key spellings over time, so the row keeps the variants
// and resolves them in the accessors.
type PurchaseRow struct {
	MongoID         string            `json:"_id"`
	ID              string            `json:"id"`
	PlaqueType      string            `json:"plaqueType"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	PaymentMethod   string            `json:"paymentMethod"`
	Status          string            `json:"status"`
	Paid            bool              `json:"paid"`
	ReferenceNumber string            `json:"referenceNumber"`
	PollURL         string            `json:"pollUrl"`
	PollURLLegacy   string            `json:"pollurl"`
	Reason          string            `json:"reason"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerPhone   string            `json:"customerPhone"`
	CreatedAt       time.Time         `json:"createdAt"`
	Album           *purchaseRowAlbum `json:"album"`
}

type purchaseRowAlbum struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	CoverArt   string `json:"cover_art"`
	Genre      string `json:"genre"`
	TrackCount int    `json:"track_count"`
}

type purchaseListEnvelope struct {
	Success *bool             `json:"success"`
	Data    []json.RawMessage `json:"data"`
}

// DecodePurchaseList accepts the three listing shapes the store is known
// to return: a bare array, {data: [...]}, and {success, data: [...]}.
func DecodePurchaseList(body []byte) ([]PurchaseRow, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var rows []PurchaseRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode purchases array: %w", err)
		}
		return rows, nil
	}

	var env purchaseListEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode purchases envelope: %w", err)
	}
	rows := make([]PurchaseRow, 0, len(env.Data))
	for _, raw := range env.Data {
		var row PurchaseRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode purchase row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ToPlaque maps a listing row onto the local ledger record.
func (r PurchaseRow) ToPlaque() *model.Plaque {
	id := r.MongoID
	if id == "" {
		id = r.ID
	}

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	pollURL := r.PollURL
	if pollURL == "" {
		pollURL = r.PollURLLegacy
	}

	plaqueType := r.PlaqueType
	if plaqueType == "" {
		plaqueType = "Plaque"
	}

	p := &model.Plaque{
		ID:              id,
		RemoteID:        r.MongoID,
		PlaqueType:      plaqueType,
		Amount:          r.Amount,
		Currency:        currency,
		PaymentMethod:   r.PaymentMethod,
		ReferenceNumber: r.ReferenceNumber,
		PollURL:         pollURL,
		Status:          model.NormalizeStatus(r.Status),
		Paid:            r.Paid,
		Reason:          r.Reason,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		CreatedAt:       r.CreatedAt,
	}

	if r.Album != nil {
		p.AlbumID = r.Album.ID
		p.AlbumTitle = r.Album.Title
		p.AlbumImage = r.Album.CoverArt
	}
	p.AlbumArtist = ArtistFromReason(r.Reason)
	return p
}

// ArtistFromReason extracts the artist from reason strings shaped like
// `Plaque purchase for "Album" by Artist`.
func ArtistFromReason(reason string) string {
	parts := strings.SplitN(reason, " by ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(parts[1]), `"`)
}
