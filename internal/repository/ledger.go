package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"plaque-payments/internal/model"
)

// PatchKey identifies the record a reconciliation patch applies to:
// the local id or the store-side id, whichever the caller has.
type PatchKey struct {
	ID       string
	RemoteID string
}

// LedgerRepository owns the local mirror of plaque purchase records.
// Rows are populated wholesale from the purchases listing and mutated
// only through ApplyPatch.
type LedgerRepository interface {
	Replace(ctx context.Context, plaques []*model.Plaque) error
	List(ctx context.Context) ([]*model.Plaque, error)
	FindByID(ctx context.Context, id string) (*model.Plaque, error)
	ApplyPatch(ctx context.Context, key PatchKey, patch map[string]interface{}) (*model.Plaque, error)
	TotalSpent(ctx context.Context) (float64, error)
}

type ledgerRepoImpl struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepoImpl{db: db}
}

func (r *ledgerRepoImpl) Replace(ctx context.Context, plaques []*model.Plaque) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Plaque{}).Error; err != nil {
			return fmt.Errorf("clear ledger: %w", err)
		}
		if len(plaques) == 0 {
			return nil
		}
		if err := tx.Create(&plaques).Error; err != nil {
			return fmt.Errorf("store plaques: %w", err)
		}
		return nil
	})
}

func (r *ledgerRepoImpl) List(ctx context.Context) ([]*model.Plaque, error) {
	var plaques []*model.Plaque
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&plaques).Error
	if err != nil {
		return nil, err
	}
	return plaques, nil
}

func (r *ledgerRepoImpl) FindByID(ctx context.Context, id string) (*model.Plaque, error) {
	var plaque model.Plaque
	err := r.db.WithContext(ctx).
		Where("id = ? OR remote_id = ?", id, id).
		First(&plaque).Error
	if err != nil {
		return nil, err
	}
	return &plaque, nil
}

// patchColumns maps gateway status fields onto ledger columns. Fields the
// gateway returns that have no column here are dropped from the patch.
var patchColumns = map[string]string{
	"status":          "status",
	"paid":            "paid",
	"referenceNumber": "reference_number",
	"pollUrl":         "poll_url",
	"pollurl":         "poll_url",
	"amount":          "amount",
	"currency":        "currency",
	"paymentMethod":   "payment_method",
	"reason":          "reason",
	"customerEmail":   "customer_email",
	"customerPhone":   "customer_phone",
}

// ApplyPatch merges reconciled fields into the matching record. This is a
// patch, never a replacement: only columns present in the patch are
// written, field by field, so a late partial result cannot erase fields a
// fuller one already wrote.
//
// Invariant: paid==true forces a terminal-success status no matter what
// the gateway's status string says. The boolean is ground truth; the
// string can be stale.
func (r *ledgerRepoImpl) ApplyPatch(ctx context.Context, key PatchKey, patch map[string]interface{}) (*model.Plaque, error) {
	updates := map[string]interface{}{}
	for field, value := range patch {
		column, ok := patchColumns[field]
		if !ok {
			continue
		}
		if field == "status" {
			if s, ok := value.(string); ok {
				value = string(model.NormalizeStatus(s))
			}
		}
		updates[column] = value
	}

	if paid, ok := patch["paid"].(bool); ok && paid {
		updates["status"] = string(model.StatusCompleted)
	}

	if len(updates) == 0 {
		return r.findByKey(ctx, key)
	}

	var plaque model.Plaque
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := keyScope(tx.Model(&model.Plaque{}), key).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return keyScope(tx, key).First(&plaque).Error
	})
	if err != nil {
		return nil, err
	}
	return &plaque, nil
}

func (r *ledgerRepoImpl) findByKey(ctx context.Context, key PatchKey) (*model.Plaque, error) {
	var plaque model.Plaque
	if err := keyScope(r.db.WithContext(ctx), key).First(&plaque).Error; err != nil {
		return nil, err
	}
	return &plaque, nil
}

// keyScope matches by whichever id the caller has; both when both are known.
func keyScope(tx *gorm.DB, key PatchKey) *gorm.DB {
	switch {
	case key.ID != "" && key.RemoteID != "":
		return tx.Where("id = ? OR remote_id = ?", key.ID, key.RemoteID)
	case key.ID != "":
		return tx.Where("id = ?", key.ID)
	default:
		return tx.Where("remote_id = ?", key.RemoteID)
	}
}

// TotalSpent sums amounts across all records regardless of status;
// pending and failed purchases count.
func (r *ledgerRepoImpl) TotalSpent(ctx context.Context) (float64, error) {
	plaques, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, p := range plaques {
		total = total.Add(decimal.NewFromFloat(p.Amount))
	}
	return total.InexactFloat64(), nil
}
