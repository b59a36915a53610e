package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hotel-addons/apperrors"
	"hotel-addons/models"
	"hotel-addons/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomOrderEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)
	spa := env.spa(t)

	view := env.sessions.Start("frontdesk", "")
	assert.Equal(t, "sess-1", view.ID)
	assert.Equal(t, "LKR", view.Cart.Currency)
	id := view.ID

	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)
	view, err = env.sessions.SearchReservation(ctx, id, "204")
	require.NoError(t, err)
	require.NotNil(t, view.Payer)
	assert.True(t, view.Payer.Resolved)
	assert.Equal(t, stayRoom.ID, view.Payer.Reservation.ID)

	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 2, ServiceTime: "06:15"})
	require.NoError(t, err)
	view, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: spa.ID, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, dec("14500").Equal(view.CartTotal), "cart total %s", view.CartTotal)

	view, err = env.sessions.Next(id)
	require.NoError(t, err)
	assert.Equal(t, "Confirmation", view.StepName)

	res, err := env.sessions.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Committed)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, int(StepSubmitted), res.Session.Step)
	require.Len(t, res.Session.Results, 2)

	addons, err := env.addons.List(ctx, store.AddonFilter{PayerRef: stayRoom.ReferenceCode})
	require.NoError(t, err)
	require.Len(t, addons, 2)
	first := addons[0]
	assert.Equal(t, models.BillingMethodRoom, first.BillingMethod)
	assert.Equal(t, stayRoom.GuestName, first.GuestName)
	assert.Equal(t, stayRoom.RoomNo, first.RoomNo)
	require.NotNil(t, first.ReservationID)
	assert.Equal(t, stayRoom.ID, *first.ReservationID)
	require.NotNil(t, first.CustomerID)
	assert.Equal(t, stayRoom.CustomerID, *first.CustomerID)
	assert.Equal(t, "06:15", first.ServiceTime)
	assert.Equal(t, "frontdesk", first.CreatedBy)
	assert.Nil(t, first.ReferenceNo)

	// submitted sessions are closed
	_, err = env.sessions.Next(id)
	assert.True(t, apperrors.IsState(err))
}

func TestCashOrderWithRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)

	id := env.sessions.Start("frontdesk", "LKR").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodCash)
	require.NoError(t, err)

	view, err := env.sessions.LookupCustomer(ctx, id, "N0-SUCH-ID")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)
	assert.Equal(t, LookupFailed, view.Payer.Lookup.Status)
	require.NotNil(t, view.Error)
	assert.Equal(t, "notFound", view.Error.Kind)

	_, err = env.sessions.Next(id)
	assert.True(t, apperrors.IsState(err))

	_, err = env.sessions.RegisterCustomer(ctx, id, models.CustomerInput{FirstName: "Kasun", Email: "kasun@example.com"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Field)

	view, err = env.sessions.RegisterCustomer(ctx, id, models.CustomerInput{
		FirstName:      "Kasun",
		LastName:       "Silva",
		Email:          "kasun@example.com",
		Phone:          "+94 77 123 4567",
		Identification: "199012345678",
	})
	require.NoError(t, err)
	require.NotNil(t, view.Payer.Customer)
	assert.Equal(t, "Kasun", view.Payer.Customer.FirstName)
	assert.Nil(t, view.Error)

	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 1, Status: models.AddonStatusCompleted})
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)

	res, err := env.sessions.Submit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, res.Committed)

	addon := res.Session.Results[0].Addon
	require.NotNil(t, addon)
	assert.True(t, strings.HasPrefix(addon.PayerRef, "CASH-"), "payer ref %s", addon.PayerRef)
	assert.Nil(t, addon.ReservationID)
	assert.Nil(t, addon.ReferenceNo)
	assert.Equal(t, "Kasun Silva", addon.GuestName)

	inv, err := env.invoices.DeriveForAddon(ctx, addon.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, inv.Invoice.Status)
	assert.True(t, dec("360").Equal(inv.Invoice.TaxAmount), "tax %s", inv.Invoice.TaxAmount)
}

func TestCashOrderFoundCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodCash)
	require.NoError(t, err)

	view, err := env.sessions.LookupCustomer(ctx, id, "901234567V")
	require.NoError(t, err)
	assert.Equal(t, walkIn.ID, view.Payer.Customer.ID)
	assert.Equal(t, LookupResolved, view.Payer.Lookup.Status)
}

func TestLookupCustomerOnRoomBillingIsStateError(t *testing.T) {
	env := newTestEnv(t)
	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)

	_, err = env.sessions.LookupCustomer(context.Background(), id, "901234567V")
	assert.True(t, apperrors.IsState(err))
}

func TestSearchReservationAmbiguous(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.reservations = newFakeReservations(
		stayRoom,
		models.Reservation{ID: 8, ReferenceCode: "BK-2026-0008", RoomNo: "204", GuestName: "Ken Sato"},
	)
	env.sessions.Reservations = env.reservations

	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)

	view, err := env.sessions.SearchReservation(ctx, id, "204")
	assert.True(t, apperrors.IsValidation(err), "got %v", err)
	assert.Len(t, view.Candidates, 2)
	assert.Equal(t, LookupFailed, view.Payer.Lookup.Status)

	view, err = env.sessions.SelectReservation(ctx, id, 8)
	require.NoError(t, err)
	assert.Equal(t, "Ken Sato", view.Payer.Reservation.GuestName)
	assert.Empty(t, view.Candidates)

	view, err = env.sessions.SearchReservation(ctx, id, "999")
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)
	assert.Nil(t, view.Payer.Reservation)
}

func TestReferenceOrderCarriesReferenceNo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)

	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodReference)
	require.NoError(t, err)
	_, err = env.sessions.SetReferenceNo(id, "PO-4471")
	require.NoError(t, err)
	_, err = env.sessions.SelectReservation(ctx, id, stayRoom.ID)
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)

	res, err := env.sessions.Submit(ctx, id)
	require.NoError(t, err)
	addon := res.Session.Results[0].Addon
	require.NotNil(t, addon.ReferenceNo)
	assert.Equal(t, "PO-4471", *addon.ReferenceNo)
	assert.Equal(t, models.BillingMethodReference, addon.BillingMethod)
}

func TestSubmitReportsPerLineFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)
	spa := env.spa(t)

	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)
	_, err = env.sessions.SelectReservation(ctx, id, stayRoom.ID)
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: spa.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)

	// first commit succeeds, then the store refuses the second line
	env.addons.Store = &failAfterStore{AddonStore: env.addonStore, allow: 1}

	res, err := env.sessions.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Committed)
	assert.Equal(t, 1, res.Failed)

	results := res.Session.Results
	require.Len(t, results, 2)
	assert.True(t, results[0].Committed)
	assert.False(t, results[1].Committed)
	assert.Equal(t, "internal", results[1].ErrorKind)
	assert.Equal(t, spa.ID, results[1].ServiceID)

	live, err := env.addonStore.ListAddons(ctx, store.AddonFilter{})
	require.NoError(t, err)
	assert.Len(t, live, 1, "committed line is not rolled back")
}

func TestSubmitFailsLineWhenReservationVanished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)

	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)
	_, err = env.sessions.SelectReservation(ctx, id, stayRoom.ID)
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)

	env.reservations.remove(stayRoom.ID)

	res, err := env.sessions.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Committed)
	assert.Equal(t, "notFound", res.Session.Results[0].ErrorKind)
}

func TestSubmitGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.sessions.Start("frontdesk", "").ID
	res, err := env.sessions.Submit(ctx, id)
	assert.True(t, apperrors.IsState(err))
	require.NotNil(t, res)
	assert.Equal(t, int(StepSelectBillingMode), res.Session.Step)
	assert.Equal(t, "state", res.Session.Error.Kind)

	_, err = env.sessions.Submit(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTogglePricesFromLiveCatalogAndCommitKeepsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)

	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)
	_, err = env.sessions.SelectReservation(ctx, id, stayRoom.ID)
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = env.catalog.UpdateItem(ctx, transfer.ID, ServiceItemInput{
		ServiceName: "Airport Transfer",
		Pricing:     []PriceInput{{Currency: "LKR", Amount: dec("3500")}},
	}, "manager")
	require.NoError(t, err)

	preview, err := env.sessions.Preview(ctx, id)
	require.NoError(t, err)
	require.Len(t, preview.Lines, 1)
	assert.True(t, dec("3000").Equal(preview.Lines[0].CartUnitPrice))
	assert.True(t, dec("3500").Equal(preview.Lines[0].LiveUnitPrice))
	assert.True(t, dec("7000").Equal(preview.Total), "preview total %s", preview.Total)

	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	res, err := env.sessions.Submit(ctx, id)
	require.NoError(t, err)
	assert.True(t, dec("6000").Equal(res.Session.Results[0].Addon.TotalPrice))
}

func TestPreviewFlagsUnavailableItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)

	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.catalog.DeleteItem(ctx, transfer.ID, "manager")
	require.NoError(t, err)

	preview, err := env.sessions.Preview(ctx, id)
	require.NoError(t, err)
	assert.False(t, preview.Lines[0].Available)
	assert.NotEmpty(t, preview.Lines[0].Note)
	assert.True(t, preview.Total.IsZero())
}

func TestToggleRejectsInactiveOrUnpricedService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	spa := env.spa(t)

	id := env.sessions.Start("frontdesk", "USD").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)

	view, err := env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: spa.ID, Quantity: 1})
	assert.True(t, apperrors.IsValidation(err), "spa has no USD price: %v", err)
	assert.True(t, view.Cart.Empty())

	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: 999, Quantity: 1})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCancelDiscardsSessionCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	transfer := env.airportTransfer(t)

	id := env.sessions.Start("frontdesk", "").ID
	_, err := env.sessions.ChooseBillingMode(id, models.BillingMethodRoom)
	require.NoError(t, err)
	_, err = env.sessions.Next(id)
	require.NoError(t, err)
	_, err = env.sessions.ToggleService(ctx, id, ToggleServiceInput{ServiceID: transfer.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := env.sessions.Cancel(id)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", view.StepName)
	assert.True(t, view.Cart.Empty())

	env.sessions.Discard(id)
	_, err = env.sessions.Get(id)
	assert.True(t, apperrors.IsNotFound(err))

	all, err := env.addonStore.ListAddons(ctx, store.AddonFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIdleSessionsAreSwept(t *testing.T) {
	env := newTestEnv(t)
	now := fixedNow
	env.sessions.now = func() time.Time { return now }
	env.sessions.SessionTTL = time.Hour

	old := env.sessions.Start("frontdesk", "").ID
	now = now.Add(2 * time.Hour)
	fresh := env.sessions.Start("frontdesk", "").ID

	_, err := env.sessions.Get(old)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = env.sessions.Get(fresh)
	assert.NoError(t, err)
}

func TestSweepRemovesOnlyIdleSessions(t *testing.T) {
	env := newTestEnv(t)
	now := fixedNow
	env.sessions.now = func() time.Time { return now }
	env.sessions.SessionTTL = 30 * time.Minute

	idle := env.sessions.Start("frontdesk", "").ID
	now = now.Add(20 * time.Minute)
	active := env.sessions.Start("frontdesk", "").ID
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, env.sessions.Sweep())
	assert.Equal(t, 0, env.sessions.Sweep())

	_, err := env.sessions.Get(idle)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = env.sessions.Get(active)
	assert.NoError(t, err)

	env.sessions.SessionTTL = 0
	now = now.Add(48 * time.Hour)
	assert.Equal(t, 0, env.sessions.Sweep())
}

func TestValidateRegistration(t *testing.T) {
	ok := models.CustomerInput{FirstName: "A", Email: "a@b.co", Phone: "0771234567"}
	assert.NoError(t, ValidateRegistration(ok))

	bad := []models.CustomerInput{
		{Email: "a@b.co", Phone: "0771234567"},
		{FirstName: "A", Phone: "0771234567"},
		{FirstName: "A", Email: "not-an-email", Phone: "0771234567"},
		{FirstName: "A", Email: "a@b.co"},
		{FirstName: "A", Email: "a@b.co", Phone: "12ab"},
	}
	for _, in := range bad {
		assert.True(t, apperrors.IsValidation(ValidateRegistration(in)), "%+v", in)
	}
}

// failAfterStore lets `allow` creates through, then fails.
type failAfterStore struct {
	store.AddonStore
	allow int
}

func (s *failAfterStore) CreateAddon(ctx context.Context, addon *models.ReservationServiceAddon) error {
	if s.allow == 0 {
		return errors.New("connection reset")
	}
	s.allow--
	return s.AddonStore.CreateAddon(ctx, addon)
}
