package store

import (
	"context"
	"fmt"

	"hotel-addons/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAddonStore persists addons in MySQL. MutateAddon holds a row lock
// (SELECT ... FOR UPDATE) for the whole check-and-mutate.
type GormAddonStore struct {
	DB *gorm.DB
}

func NewGormAddonStore(db *gorm.DB) *GormAddonStore {
	return &GormAddonStore{DB: db}
}

func (s *GormAddonStore) CreateAddon(ctx context.Context, addon *models.ReservationServiceAddon) error {
	addon.Version = 1
	if err := s.DB.WithContext(ctx).Create(addon).Error; err != nil {
		return translate(err, "addon", addon.ServiceID)
	}
	return nil
}

func (s *GormAddonStore) GetAddon(ctx context.Context, id uint) (*models.ReservationServiceAddon, error) {
	var addon models.ReservationServiceAddon
	if err := s.DB.WithContext(ctx).First(&addon, id).Error; err != nil {
		return nil, translate(err, "addon", id)
	}
	return &addon, nil
}

func (s *GormAddonStore) ListAddons(ctx context.Context, filter AddonFilter) ([]models.ReservationServiceAddon, error) {
	q := s.DB.WithContext(ctx).Order("id ASC")
	if filter.IncludeDeleted {
		q = q.Unscoped()
	}
	if filter.PayerRef != "" {
		q = q.Where("payer_ref = ?", filter.PayerRef)
	}
	if filter.ReservationID != nil {
		q = q.Where("reservation_id = ?", *filter.ReservationID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var addons []models.ReservationServiceAddon
	if err := q.Find(&addons).Error; err != nil {
		return nil, fmt.Errorf("failed to list addons: %w", err)
	}
	return addons, nil
}

func (s *GormAddonStore) MutateAddon(ctx context.Context, id uint, fn func(addon *models.ReservationServiceAddon) error) (*models.ReservationServiceAddon, error) {
	var out models.ReservationServiceAddon
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ReservationServiceAddon
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
			return translate(err, "addon", id)
		}

		version := row.Version
		if err := fn(&row); err != nil {
			return err
		}
		row.Version = version + 1

		// Unscoped: soft delete ก็เขียนผ่าน deleted_at ใน statement เดียวกัน
		if err := tx.Unscoped().Save(&row).Error; err != nil {
			return fmt.Errorf("failed to save addon %d: %w", id, err)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GormAddonStore) SumForPayer(ctx context.Context, payerRef string) (decimal.Decimal, error) {
	var out struct {
		Total decimal.NullDecimal
	}
	err := s.DB.WithContext(ctx).
		Model(&models.ReservationServiceAddon{}).
		Where("payer_ref = ?", payerRef).
		Select("SUM(total_price) AS total").
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum addons for %s: %w", payerRef, err)
	}
	if !out.Total.Valid {
		return decimal.Zero, nil
	}
	return out.Total.Decimal, nil
}
