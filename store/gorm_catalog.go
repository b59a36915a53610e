package store

import (
	"context"
	"fmt"
	"time"

	"hotel-addons/models"

	"gorm.io/gorm"
)

// GormCatalogStore stores catalog items in MySQL. Price rows live in
// service_item_prices with a unique (service_id, currency) index.
type GormCatalogStore struct {
	DB *gorm.DB
}

func NewGormCatalogStore(db *gorm.DB) *GormCatalogStore {
	return &GormCatalogStore{DB: db}
}

func (s *GormCatalogStore) CreateItem(ctx context.Context, item *models.ServiceItemMaster) error {
	return translate(s.DB.WithContext(ctx).Create(item).Error, "service", item.ServiceName)
}

func (s *GormCatalogStore) ReplaceItem(ctx context.Context, item *models.ServiceItemMaster) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ServiceItemMaster
		if err := tx.Select("id").First(&existing, item.ID).Error; err != nil {
			return translate(err, "service", item.ID)
		}

		// ลบราคาเดิมทั้งหมดแล้วใส่ชุดใหม่ (replace wholesale)
		if err := tx.Where("service_id = ?", item.ID).Delete(&models.ServiceItemPrice{}).Error; err != nil {
			return fmt.Errorf("failed to clear pricing: %w", err)
		}

		if err := tx.Model(&models.ServiceItemMaster{ID: item.ID}).
			Select("service_name", "description", "category", "tax_ids", "unit_type", "status", "updated_by", "updated_at").
			Updates(item).Error; err != nil {
			return translate(err, "service", item.ID)
		}

		prices := make([]models.ServiceItemPrice, 0, len(item.Pricing))
		for _, p := range item.Pricing {
			prices = append(prices, models.ServiceItemPrice{ServiceID: item.ID, Currency: p.Currency, Amount: p.Amount})
		}
		if len(prices) > 0 {
			if err := tx.Create(&prices).Error; err != nil {
				return translate(err, "service price", item.ID)
			}
		}
		item.Pricing = prices
		return nil
	})
}

func (s *GormCatalogStore) GetItem(ctx context.Context, id uint) (*models.ServiceItemMaster, error) {
	var item models.ServiceItemMaster
	if err := s.DB.WithContext(ctx).Preload("Pricing").First(&item, id).Error; err != nil {
		return nil, translate(err, "service", id)
	}
	return &item, nil
}

func (s *GormCatalogStore) ListItems(ctx context.Context, status, category string) ([]models.ServiceItemMaster, error) {
	q := s.DB.WithContext(ctx).Preload("Pricing").Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	var items []models.ServiceItemMaster
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return items, nil
}

func (s *GormCatalogStore) SetItemStatus(ctx context.Context, id uint, status, actor string) (*models.ServiceItemMaster, error) {
	res := s.DB.WithContext(ctx).Model(&models.ServiceItemMaster{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_by": actor, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update service status: %w", res.Error)
	}
	// RowsAffected = 0 อาจเป็นเพราะค่าเดิมเหมือนกัน ให้ GetItem ตัดสินว่ามี record หรือไม่
	return s.GetItem(ctx, id)
}
