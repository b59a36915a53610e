// services/catalog_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"hotel-addons/apperrors"
	"hotel-addons/models"
	"hotel-addons/store"

	"github.com/shopspring/decimal"
)

type PriceInput struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// ServiceItemInput is the full replacement payload for add and update.
type ServiceItemInput struct {
	ServiceName string       `json:"serviceName"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Pricing     []PriceInput `json:"pricing"`
	TaxIDs      []uint       `json:"taxIds"`
	UnitType    string       `json:"unitType"`
}

// CatalogService owns the sellable service definitions.
type CatalogService struct {
	Store      store.CatalogStore
	Currencies CurrencyTable
	Taxes      TaxCatalog
	now        func() time.Time
}

func NewCatalogService(st store.CatalogStore, currencies CurrencyTable, taxes TaxCatalog) *CatalogService {
	return &CatalogService{Store: st, Currencies: currencies, Taxes: taxes, now: time.Now}
}

// validate คืน pricing ที่ normalize แล้ว (currency upper-case, ไม่ซ้ำ)
func (s *CatalogService) validate(ctx context.Context, input ServiceItemInput) ([]models.ServiceItemPrice, []uint, error) {
	if strings.TrimSpace(input.ServiceName) == "" {
		return nil, nil, apperrors.Validation("serviceName", "service name is required")
	}
	if len(input.Pricing) == 0 {
		return nil, nil, apperrors.Validation("pricing", "at least one currency price is required")
	}

	known := map[string]bool{}
	if s.Currencies != nil {
		codes, err := s.Currencies.ListCodes(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load currencies: %w", err)
		}
		for _, c := range codes {
			known[strings.ToUpper(c)] = true
		}
	}

	seen := map[string]bool{}
	prices := make([]models.ServiceItemPrice, 0, len(input.Pricing))
	for i, p := range input.Pricing {
		code := strings.ToUpper(strings.TrimSpace(p.Currency))
		field := fmt.Sprintf("pricing[%d]", i)
		if code == "" {
			return nil, nil, apperrors.Validation(field, "no currency selected")
		}
		if len(known) > 0 && !known[code] {
			return nil, nil, apperrors.Validation(field, "unknown currency %s", code)
		}
		if seen[code] {
			return nil, nil, apperrors.Validation(field, "duplicate currency %s", code)
		}
		if !p.Amount.IsPositive() {
			return nil, nil, apperrors.Validation(field, "amount must be greater than 0")
		}
		seen[code] = true
		prices = append(prices, models.ServiceItemPrice{Currency: code, Amount: p.Amount.Round(2)})
	}

	taxIDs := uniqueIDs(input.TaxIDs)
	if len(taxIDs) > 0 && s.Taxes != nil {
		rates, err := s.Taxes.Get(ctx, taxIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load taxes: %w", err)
		}
		found := map[uint]bool{}
		for _, r := range rates {
			found[r.ID] = true
		}
		for _, id := range taxIDs {
			if !found[id] {
				return nil, nil, apperrors.NotFound("tax", id)
			}
		}
	}
	return prices, taxIDs, nil
}

func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := map[uint]bool{}
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *CatalogService) AddItem(ctx context.Context, input ServiceItemInput, actor string) (*models.ServiceItemMaster, error) {
	prices, taxIDs, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.ServiceItemMaster{
		ServiceName: strings.TrimSpace(input.ServiceName),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Pricing:     prices,
		TaxIDs:      models.EncodeTaxIDs(taxIDs),
		UnitType:    strings.TrimSpace(input.UnitType),
		Status:      models.ServiceStatusActive,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedBy:   actor,
		UpdatedAt:   now,
	}
	if err := s.Store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	log.Printf("✅ service item %d (%s) created by %s", item.ID, item.ServiceName, actor)
	return item, nil
}

// UpdateItem replaces pricing and tax set wholesale. Status and creation
// audit fields are kept.
func (s *CatalogService) UpdateItem(ctx context.Context, id uint, input ServiceItemInput, actor string) (*models.ServiceItemMaster, error) {
	prices, taxIDs, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.Store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.ServiceName = strings.TrimSpace(input.ServiceName)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Category = strings.TrimSpace(input.Category)
	existing.Pricing = prices
	existing.TaxIDs = models.EncodeTaxIDs(taxIDs)
	existing.UnitType = strings.TrimSpace(input.UnitType)
	existing.UpdatedBy = actor
	existing.UpdatedAt = s.now()

	if err := s.Store.ReplaceItem(ctx, existing); err != nil {
		return nil, err
	}
	log.Printf("✅ service item %d updated by %s", id, actor)
	return existing, nil
}

// DeleteItem is a soft delete: status -> Inactive.
func (s *CatalogService) DeleteItem(ctx context.Context, id uint, actor string) (*models.ServiceItemMaster, error) {
	item, err := s.Store.SetItemStatus(ctx, id, models.ServiceStatusInactive, actor)
	if err != nil {
		return nil, err
	}
	log.Printf("⚠️ service item %d deactivated by %s", id, actor)
	return item, nil
}

func (s *CatalogService) RestoreItem(ctx context.Context, id uint, actor string) (*models.ServiceItemMaster, error) {
	item, err := s.Store.SetItemStatus(ctx, id, models.ServiceStatusActive, actor)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ service item %d restored by %s", id, actor)
	return item, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id uint) (*models.ServiceItemMaster, error) {
	return s.Store.GetItem(ctx, id)
}

func (s *CatalogService) ListActive(ctx context.Context, category string) ([]models.ServiceItemMaster, error) {
	return s.Store.ListItems(ctx, models.ServiceStatusActive, strings.TrimSpace(category))
}

func (s *CatalogService) ListInactive(ctx context.Context) ([]models.ServiceItemMaster, error) {
	return s.Store.ListItems(ctx, models.ServiceStatusInactive, "")
}

// LivePrice reads the current catalog price of an active item.
func (s *CatalogService) LivePrice(ctx context.Context, id uint, currency string) (*models.ServiceItemMaster, decimal.Decimal, error) {
	item, err := s.Store.GetItem(ctx, id)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !item.IsActive() {
		return nil, decimal.Zero, apperrors.Validation("serviceId", "service %d is inactive", id)
	}
	price, ok := item.PriceFor(currency)
	if !ok {
		return nil, decimal.Zero, apperrors.Validation("currency", "service %d has no %s price", id, currency)
	}
	return item, price, nil
}
