package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"hotel-addons/models"
	"hotel-addons/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- FAKES ---

type fakeCustomers struct {
	mu        sync.Mutex
	byID      map[string]models.Customer
	nextID    uint
	createErr error
	findErr   error
}

func newFakeCustomers(existing ...models.Customer) *fakeCustomers {
	f := &fakeCustomers{byID: map[string]models.Customer{}, nextID: 100}
	for _, c := range existing {
		f.byID[*c.Identification] = c
	}
	return f
}

func (f *fakeCustomers) FindByIdentification(_ context.Context, identification string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	c, ok := f.byID[identification]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeCustomers) Create(_ context.Context, input models.CustomerInput) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := models.Customer{FirstName: input.FirstName, LastName: input.LastName, Email: input.Email, Phone: input.Phone}
	c.ID = f.nextID
	if input.Identification != "" {
		id := input.Identification
		c.Identification = &id
		f.byID[id] = c
	}
	return &c, nil
}

type fakeReservations struct {
	mu   sync.Mutex
	byID map[uint]models.Reservation
}

func newFakeReservations(rs ...models.Reservation) *fakeReservations {
	f := &fakeReservations{byID: map[uint]models.Reservation{}}
	for _, r := range rs {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeReservations) Get(_ context.Context, id uint) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeReservations) FindByRoomOrReference(_ context.Context, query string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Reservation{}
	for id := uint(1); id <= uint(len(f.byID))+10; id++ {
		r, ok := f.byID[id]
		if !ok {
			continue
		}
		if strings.EqualFold(r.RoomNo, query) || strings.EqualFold(r.ReferenceCode, query) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservations) remove(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type fakeCurrencies []string

func (f fakeCurrencies) ListCodes(context.Context) ([]string, error) { return f, nil }

type fakeTaxes map[uint]models.TaxRate

func (f fakeTaxes) Get(_ context.Context, ids []uint) ([]models.TaxRate, error) {
	out := []models.TaxRate{}
	for _, id := range ids {
		if r, ok := f[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- FIXTURES ---

var (
	fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	taxVAT     = models.TaxRate{ID: 1, Name: "VAT", Rate: decimal.NewFromInt(12), Active: true}
	taxService = models.TaxRate{ID: 2, Name: "Service charge", Rate: decimal.NewFromInt(10), Active: true}

	walkIn = models.Customer{
		Model:          gorm.Model{ID: 42},
		FirstName:      "Nimal",
		LastName:       "Perera",
		Identification: strPtr("901234567V"),
	}

	stayRoom = models.Reservation{
		ID:            7,
		ReferenceCode: "BK-2026-0007",
		Status:        "checked_in",
		CustomerID:    55,
		GuestName:     "Anna Schmidt",
		RoomNo:        "204",
	}
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type testEnv struct {
	catalogStore *store.MemoryCatalogStore
	addonStore   *store.MemoryAddonStore
	catalog      *CatalogService
	addons       *AddonService
	invoices     *InvoiceService
	customers    *fakeCustomers
	reservations *fakeReservations
	sessions     *OrderSessionService
	publisher    *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		catalogStore: store.NewMemoryCatalogStore(),
		addonStore:   store.NewMemoryAddonStore(),
		customers:    newFakeCustomers(walkIn),
		reservations: newFakeReservations(stayRoom),
		publisher:    &recordingPublisher{},
	}
	taxes := fakeTaxes{taxVAT.ID: taxVAT, taxService.ID: taxService}

	env.catalog = NewCatalogService(env.catalogStore, fakeCurrencies{"LKR", "USD", "EUR", "THB"}, taxes)
	env.catalog.now = func() time.Time { return fixedNow }

	env.addons = NewAddonService(env.addonStore, env.catalogStore, env.publisher)
	env.addons.now = func() time.Time { return fixedNow }

	env.invoices = NewInvoiceService(env.addonStore, taxes, decimal.Zero)

	env.sessions = NewOrderSessionService(env.catalog, env.addons, env.customers, env.reservations, "LKR", "CASH")
	seq := 0
	env.sessions.newID = func() string {
		seq++
		return fmt.Sprintf("sess-%d", seq)
	}
	env.sessions.now = func() time.Time { return fixedNow }
	return env
}

// airportTransfer adds the LKR 3000 / USD 10 transfer with VAT.
func (env *testEnv) airportTransfer(t *testing.T) *models.ServiceItemMaster {
	t.Helper()
	item, err := env.catalog.AddItem(context.Background(), ServiceItemInput{
		ServiceName: "Airport Transfer",
		Category:    "Transport",
		UnitType:    "per trip",
		Pricing: []PriceInput{
			{Currency: "LKR", Amount: dec("3000")},
			{Currency: "USD", Amount: dec("10")},
		},
		TaxIDs: []uint{taxVAT.ID},
	}, "frontdesk")
	require.NoError(t, err)
	return item
}

func (env *testEnv) spa(t *testing.T) *models.ServiceItemMaster {
	t.Helper()
	item, err := env.catalog.AddItem(context.Background(), ServiceItemInput{
		ServiceName: "Spa Treatment",
		Category:    "Wellness",
		UnitType:    "per person",
		Pricing:     []PriceInput{{Currency: "LKR", Amount: dec("8500")}},
		TaxIDs:      []uint{taxVAT.ID, taxService.ID},
	}, "frontdesk")
	require.NoError(t, err)
	return item
}

func roomPayer() PayerContext {
	resID := stayRoom.ID
	return PayerContext{
		BillingMethod: models.BillingMethodRoom,
		PayerRef:      stayRoom.ReferenceCode,
		ReservationID: &resID,
		GuestName:     stayRoom.GuestName,
		RoomNo:        stayRoom.RoomNo,
	}
}

func cashPayer() PayerContext {
	cid := walkIn.ID
	return PayerContext{
		BillingMethod: models.BillingMethodCash,
		PayerRef:      "CASH-TEST01",
		CustomerID:    &cid,
		GuestName:     "Nimal Perera",
	}
}

func lineFor(item *models.ServiceItemMaster, currency string, qty int) CartLine {
	price, _ := item.PriceFor(currency)
	return CartLine{
		ServiceID:   item.ID,
		ServiceName: item.ServiceName,
		Quantity:    qty,
		UnitPrice:   price,
		Currency:    currency,
		UnitType:    item.UnitType,
		Status:      models.AddonStatusPending,
	}
}
