package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hotel-addons/apperrors"
	"hotel-addons/models"

	"github.com/shopspring/decimal"
)

// MemoryCatalogStore is a process-local CatalogStore.
type MemoryCatalogStore struct {
	mu     sync.RWMutex
	items  map[uint]models.ServiceItemMaster
	nextID uint
}

func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{items: make(map[uint]models.ServiceItemMaster)}
}

func cloneItem(item models.ServiceItemMaster) models.ServiceItemMaster {
	out := item
	out.Pricing = append([]models.ServiceItemPrice(nil), item.Pricing...)
	if item.TaxIDs != nil {
		out.TaxIDs = append(out.TaxIDs[:0:0], item.TaxIDs...)
	}
	return out
}

func (s *MemoryCatalogStore) CreateItem(ctx context.Context, item *models.ServiceItemMaster) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item.ID = s.nextID
	for i := range item.Pricing {
		item.Pricing[i].ServiceID = item.ID
	}
	s.items[item.ID] = cloneItem(*item)
	return nil
}

func (s *MemoryCatalogStore) ReplaceItem(ctx context.Context, item *models.ServiceItemMaster) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		return apperrors.NotFound("service", item.ID)
	}
	for i := range item.Pricing {
		item.Pricing[i].ServiceID = item.ID
	}
	s.items[item.ID] = cloneItem(*item)
	return nil
}

func (s *MemoryCatalogStore) GetItem(ctx context.Context, id uint) (*models.ServiceItemMaster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, apperrors.NotFound("service", id)
	}
	out := cloneItem(item)
	return &out, nil
}

func (s *MemoryCatalogStore) ListItems(ctx context.Context, status, category string) ([]models.ServiceItemMaster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ServiceItemMaster, 0, len(s.items))
	for _, item := range s.items {
		if status != "" && item.Status != status {
			continue
		}
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryCatalogStore) SetItemStatus(ctx context.Context, id uint, status, actor string) (*models.ServiceItemMaster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, apperrors.NotFound("service", id)
	}
	item.Status = status
	item.UpdatedBy = actor
	item.UpdatedAt = time.Now()
	s.items[id] = item
	out := cloneItem(item)
	return &out, nil
}

// MemoryAddonStore keeps addons in a map guarded by a single mutex, so
// MutateAddon is one critical section for check-and-mutate.
type MemoryAddonStore struct {
	mu     sync.Mutex
	addons map[uint]models.ReservationServiceAddon
	nextID uint
}

func NewMemoryAddonStore() *MemoryAddonStore {
	return &MemoryAddonStore{addons: make(map[uint]models.ReservationServiceAddon)}
}

func (s *MemoryAddonStore) CreateAddon(ctx context.Context, addon *models.ReservationServiceAddon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	addon.ID = s.nextID
	addon.Version = 1
	if addon.CreatedAt.IsZero() {
		addon.CreatedAt = time.Now()
	}
	if addon.UpdatedAt.IsZero() {
		addon.UpdatedAt = addon.CreatedAt
	}
	addon.Recalculate()
	s.addons[addon.ID] = addon.Clone()
	return nil
}

func (s *MemoryAddonStore) GetAddon(ctx context.Context, id uint) (*models.ReservationServiceAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	addon, ok := s.addons[id]
	if !ok || addon.DeletedAt.Valid {
		return nil, apperrors.NotFound("addon", id)
	}
	out := addon.Clone()
	return &out, nil
}

func (s *MemoryAddonStore) ListAddons(ctx context.Context, filter AddonFilter) ([]models.ReservationServiceAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ReservationServiceAddon, 0)
	for _, addon := range s.addons {
		if !matchesFilter(addon, filter) {
			continue
		}
		out = append(out, addon.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matchesFilter(addon models.ReservationServiceAddon, filter AddonFilter) bool {
	if addon.DeletedAt.Valid && !filter.IncludeDeleted {
		return false
	}
	if filter.PayerRef != "" && addon.PayerRef != filter.PayerRef {
		return false
	}
	if filter.ReservationID != nil && (addon.ReservationID == nil || *addon.ReservationID != *filter.ReservationID) {
		return false
	}
	if filter.Status != "" && addon.Status != filter.Status {
		return false
	}
	return true
}

func (s *MemoryAddonStore) MutateAddon(ctx context.Context, id uint, fn func(addon *models.ReservationServiceAddon) error) (*models.ReservationServiceAddon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.addons[id]
	if !ok || current.DeletedAt.Valid {
		return nil, apperrors.NotFound("addon", id)
	}
	work := current.Clone()
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.ID = id
	work.Version = current.Version + 1
	work.Recalculate()
	s.addons[id] = work.Clone()
	return &work, nil
}

func (s *MemoryAddonStore) SumForPayer(ctx context.Context, payerRef string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, addon := range s.addons {
		if addon.DeletedAt.Valid || addon.PayerRef != payerRef {
			continue
		}
		total = total.Add(addon.TotalPrice)
	}
	return total, nil
}
