// services/registries.go
package services

import (
	"context"

	"hotel-addons/models"
)

// External collaborators. Customer/reservation lookups return (nil, nil)
// when nothing matches.

type CustomerRegistry interface {
	FindByIdentification(ctx context.Context, identification string) (*models.Customer, error)
	Create(ctx context.Context, input models.CustomerInput) (*models.Customer, error)
}

type ReservationRegistry interface {
	Get(ctx context.Context, id uint) (*models.Reservation, error)
	FindByRoomOrReference(ctx context.Context, query string) ([]models.Reservation, error)
}

type CurrencyTable interface {
	ListCodes(ctx context.Context) ([]string, error)
}

type TaxCatalog interface {
	Get(ctx context.Context, ids []uint) ([]models.TaxRate, error)
}
