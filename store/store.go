// store/store.go
package store

import (
	"context"

	"hotel-addons/models"

	"github.com/shopspring/decimal"
)

// CatalogStore persists service catalog items together with their price rows.
type CatalogStore interface {
	CreateItem(ctx context.Context, item *models.ServiceItemMaster) error
	// ReplaceItem overwrites the item and swaps its whole pricing set.
	ReplaceItem(ctx context.Context, item *models.ServiceItemMaster) error
	GetItem(ctx context.Context, id uint) (*models.ServiceItemMaster, error)
	ListItems(ctx context.Context, status, category string) ([]models.ServiceItemMaster, error)
	SetItemStatus(ctx context.Context, id uint, status, actor string) (*models.ServiceItemMaster, error)
}

// AddonFilter narrows ListAddons. Zero values mean "any".
type AddonFilter struct {
	PayerRef       string
	ReservationID  *uint
	Status         string
	IncludeDeleted bool
}

// AddonStore persists committed order lines.
type AddonStore interface {
	CreateAddon(ctx context.Context, addon *models.ReservationServiceAddon) error
	GetAddon(ctx context.Context, id uint) (*models.ReservationServiceAddon, error)
	ListAddons(ctx context.Context, filter AddonFilter) ([]models.ReservationServiceAddon, error)
	// CreateAddon stores the row at Version 1.
	// MutateAddon loads a live (non-deleted) row, runs fn on it and persists the
	// result in one critical section, bumping Version by one. If fn returns an
	// error nothing is written.
	MutateAddon(ctx context.Context, id uint, fn func(addon *models.ReservationServiceAddon) error) (*models.ReservationServiceAddon, error)
	SumForPayer(ctx context.Context, payerRef string) (decimal.Decimal, error)
}
