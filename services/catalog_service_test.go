package services

import (
	"context"
	"testing"

	"hotel-addons/apperrors"
	"hotel-addons/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	valid := func() ServiceItemInput {
		return ServiceItemInput{
			ServiceName: "Laundry",
			Category:    "Housekeeping",
			UnitType:    "per bag",
			Pricing:     []PriceInput{{Currency: "LKR", Amount: dec("1200")}},
		}
	}

	tests := []struct {
		name   string
		mutate func(in *ServiceItemInput)
		check  func(error) bool
		field  string
	}{
		{"missing name", func(in *ServiceItemInput) { in.ServiceName = "  " }, apperrors.IsValidation, "serviceName"},
		{"no pricing", func(in *ServiceItemInput) { in.Pricing = nil }, apperrors.IsValidation, "pricing"},
		{"no currency selected", func(in *ServiceItemInput) { in.Pricing[0].Currency = "" }, apperrors.IsValidation, "pricing[0]"},
		{"unknown currency", func(in *ServiceItemInput) { in.Pricing[0].Currency = "JPY" }, apperrors.IsValidation, "pricing[0]"},
		{"zero amount", func(in *ServiceItemInput) { in.Pricing[0].Amount = dec("0") }, apperrors.IsValidation, "pricing[0]"},
		{"negative amount", func(in *ServiceItemInput) { in.Pricing[0].Amount = dec("-5") }, apperrors.IsValidation, "pricing[0]"},
		{"duplicate currency", func(in *ServiceItemInput) {
			in.Pricing = append(in.Pricing, PriceInput{Currency: "lkr", Amount: dec("10")})
		}, apperrors.IsValidation, "pricing[1]"},
		{"unknown tax", func(in *ServiceItemInput) { in.TaxIDs = []uint{taxVAT.ID, 99} }, apperrors.IsNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			_, err := env.catalog.AddItem(ctx, in, "manager")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			if tt.field != "" {
				var verr *apperrors.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}

	items, err := env.catalog.ListActive(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddItemNormalizesPricing(t *testing.T) {
	env := newTestEnv(t)
	item, err := env.catalog.AddItem(context.Background(), ServiceItemInput{
		ServiceName: " Breakfast ",
		Pricing:     []PriceInput{{Currency: "usd", Amount: dec("12.499")}},
		TaxIDs:      []uint{taxVAT.ID, taxVAT.ID, 0},
	}, "manager")
	require.NoError(t, err)

	assert.Equal(t, "Breakfast", item.ServiceName)
	assert.Equal(t, models.ServiceStatusActive, item.Status)
	price, ok := item.PriceFor("USD")
	require.True(t, ok)
	assert.True(t, dec("12.5").Equal(price), "price %s", price)
	assert.Equal(t, []uint{taxVAT.ID}, item.TaxIDList())
}

func TestUpdateItemReplacesPricingAndKeepsAudit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.airportTransfer(t)

	updated, err := env.catalog.UpdateItem(ctx, item.ID, ServiceItemInput{
		ServiceName: "Airport Transfer (Van)",
		Category:    "Transport",
		Pricing:     []PriceInput{{Currency: "EUR", Amount: dec("15")}},
	}, "manager")
	require.NoError(t, err)

	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, "frontdesk", updated.CreatedBy)
	assert.Equal(t, "manager", updated.UpdatedBy)
	assert.Empty(t, updated.TaxIDList())

	got, err := env.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Pricing, 1)
	_, hasLKR := got.PriceFor("LKR")
	assert.False(t, hasLKR)
	eur, _ := got.PriceFor("EUR")
	assert.True(t, dec("15").Equal(eur))
}

func TestUpdateItemKeepsInactiveStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.airportTransfer(t)
	_, err := env.catalog.DeleteItem(ctx, item.ID, "manager")
	require.NoError(t, err)

	updated, err := env.catalog.UpdateItem(ctx, item.ID, ServiceItemInput{
		ServiceName: "Airport Transfer",
		Pricing:     []PriceInput{{Currency: "LKR", Amount: dec("3200")}},
	}, "manager")
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStatusInactive, updated.Status)
}

func TestUpdateUnknownItem(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.catalog.UpdateItem(context.Background(), 404, ServiceItemInput{
		ServiceName: "Ghost",
		Pricing:     []PriceInput{{Currency: "LKR", Amount: dec("1")}},
	}, "manager")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteAndRestoreItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)
	spa := env.spa(t)

	_, err := env.catalog.DeleteItem(ctx, transfer.ID, "manager")
	require.NoError(t, err)

	active, err := env.catalog.ListActive(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, spa.ID, active[0].ID)

	inactive, err := env.catalog.ListInactive(ctx)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, transfer.ID, inactive[0].ID)

	// soft delete keeps the row readable
	got, err := env.catalog.GetItem(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStatusInactive, got.Status)

	restored, err := env.catalog.RestoreItem(ctx, transfer.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStatusActive, restored.Status)

	inactive, err = env.catalog.ListInactive(ctx)
	require.NoError(t, err)
	assert.Empty(t, inactive)
}

func TestListActiveByCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.airportTransfer(t)
	spa := env.spa(t)

	wellness, err := env.catalog.ListActive(ctx, "wellness")
	require.NoError(t, err)
	require.Len(t, wellness, 1)
	assert.Equal(t, spa.ID, wellness[0].ID)
}

func TestLivePrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.airportTransfer(t)

	_, price, err := env.catalog.LivePrice(ctx, item.ID, "USD")
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(price))

	_, _, err = env.catalog.LivePrice(ctx, item.ID, "THB")
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.catalog.DeleteItem(ctx, item.ID, "manager")
	require.NoError(t, err)
	_, _, err = env.catalog.LivePrice(ctx, item.ID, "LKR")
	assert.True(t, apperrors.IsValidation(err))

	_, _, err = env.catalog.LivePrice(ctx, 999, "LKR")
	assert.True(t, apperrors.IsNotFound(err))
}
