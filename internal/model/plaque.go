package model

import (
	"strings"
	"time"
)

type PurchaseStatus string

const (
	StatusPending   PurchaseStatus = "PENDING"
	StatusPaid      PurchaseStatus = "PAID"
	StatusFailed    PurchaseStatus = "FAILED"
	StatusCancelled PurchaseStatus = "CANCELLED"
	StatusCompleted PurchaseStatus = "COMPLETED"
)

// NormalizeStatus maps a gateway status string (any casing) onto the
// local enum. Unrecognized values are non-terminal PENDING.
func NormalizeStatus(s string) PurchaseStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAID", "SUCCESS":
		return StatusPaid
	case "COMPLETED":
		return StatusCompleted
	case "FAILED":
		return StatusFailed
	case "CANCELLED", "CANCELED":
		return StatusCancelled
	default:
		return StatusPending
	}
}

func (s PurchaseStatus) TerminalSuccess() bool {
	return s == StatusPaid || s == StatusCompleted
}

func (s PurchaseStatus) TerminalFailure() bool {
	return s == StatusFailed || s == StatusCancelled
}

func (s PurchaseStatus) Terminal() bool {
	return s.TerminalSuccess() || s.TerminalFailure()
}

// Plaque is the locally mirrored purchase record. The store service owns
// the authoritative copy; rows here are populated wholesale from the
// purchases listing and mutated only through ledger patches.
type Plaque struct {
	ID              string `gorm:"primaryKey;size:64;not null"`
	RemoteID        string `gorm:"size:64;index"` // store-side "_id" when it differs from ID
	AlbumID         string `gorm:"size:64;index"`
	AlbumTitle      string
	AlbumArtist     string
	AlbumImage      string
	PlaqueType      string `gorm:"size:32"`
	Amount          float64
	Currency        string         `gorm:"size:8"`
	PaymentMethod   string         `gorm:"size:64"`
	ReferenceNumber string         `gorm:"size:64;index"`
	PollURL         string         `gorm:"size:255"`
	Status          PurchaseStatus `gorm:"size:16;index"`
	Paid            bool
	Reason          string
	CustomerEmail   string `gorm:"size:128"`
	CustomerPhone   string `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Plaque) TableName() string {
	return "plaques"
}
