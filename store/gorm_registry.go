package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hotel-addons/models"

	"gorm.io/gorm"
)

// GormCustomerRegistry looks customers up by identification number.
type GormCustomerRegistry struct {
	DB *gorm.DB
}

func NewGormCustomerRegistry(db *gorm.DB) *GormCustomerRegistry {
	return &GormCustomerRegistry{DB: db}
}

// FindByIdentification returns (nil, nil) when no customer carries the id.
func (r *GormCustomerRegistry) FindByIdentification(ctx context.Context, identification string) (*models.Customer, error) {
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return nil, nil
	}
	var customer models.Customer
	err := r.DB.WithContext(ctx).Where("identification = ?", identification).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

func (r *GormCustomerRegistry) Create(ctx context.Context, input models.CustomerInput) (*models.Customer, error) {
	customer := models.Customer{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
	}
	if id := strings.TrimSpace(input.Identification); id != "" {
		customer.Identification = &id
	}
	customer.FullName = customer.DisplayName()
	if err := r.DB.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, translate(err, "customer", input.Identification)
	}
	return &customer, nil
}

// GormReservationRegistry reads bookings as reservations.
type GormReservationRegistry struct {
	DB *gorm.DB
}

func NewGormReservationRegistry(db *gorm.DB) *GormReservationRegistry {
	return &GormReservationRegistry{DB: db}
}

func (r *GormReservationRegistry) preload(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Room.RoomType").
		Preload("Rooms.Room.RoomType")
}

// Get returns (nil, nil) when the booking does not exist or was deleted.
func (r *GormReservationRegistry) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	var booking models.Booking
	err := r.preload(ctx).First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking %d: %w", id, err)
	}
	res := booking.ToReservation()
	return &res, nil
}

// FindByRoomOrReference matches a booking reference code exactly, a booking
// id, or any booking holding a room whose number/code equals the query.
func (r *GormReservationRegistry) FindByRoomOrReference(ctx context.Context, query string) ([]models.Reservation, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.Reservation{}, nil
	}
	lower := strings.ToLower(q)

	roomBookingIDs := r.DB.WithContext(ctx).
		Table("booking_rooms").
		Select("booking_rooms.booking_id").
		Joins("JOIN rooms ON rooms.id = booking_rooms.room_id").
		Where("booking_rooms.deleted_at IS NULL").
		Where("LOWER(rooms.room_number) = ? OR LOWER(rooms.room_code) = ?", lower, lower)

	singleRoomIDs := r.DB.WithContext(ctx).
		Table("rooms").
		Select("rooms.id").
		Where("LOWER(rooms.room_number) = ? OR LOWER(rooms.room_code) = ?", lower, lower)

	cond := r.DB.Where("LOWER(bookings.reference_code) = ?", lower).
		Or("bookings.id IN (?)", roomBookingIDs).
		Or("bookings.room_id IN (?)", singleRoomIDs)
	if id, err := strconv.ParseUint(q, 10, 64); err == nil {
		cond = cond.Or("bookings.id = ?", id)
	}

	var bookings []models.Booking
	if err := r.preload(ctx).Where(cond).Order("bookings.id DESC").Limit(50).Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}

	out := make([]models.Reservation, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ToReservation())
	}
	return out, nil
}

// GormCurrencyTable lists the currency codes maintained by the back office.
type GormCurrencyTable struct {
	DB *gorm.DB
}

func NewGormCurrencyTable(db *gorm.DB) *GormCurrencyTable {
	return &GormCurrencyTable{DB: db}
}

func (t *GormCurrencyTable) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := t.DB.WithContext(ctx).Model(&models.Currency{}).Order("code ASC").Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return codes, nil
}

func (t *GormCurrencyTable) List(ctx context.Context) ([]models.Currency, error) {
	var currencies []models.Currency
	if err := t.DB.WithContext(ctx).Order("code ASC").Find(&currencies).Error; err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}

// GormTaxCatalog reads tax rates by id.
type GormTaxCatalog struct {
	DB *gorm.DB
}

func NewGormTaxCatalog(db *gorm.DB) *GormTaxCatalog {
	return &GormTaxCatalog{DB: db}
}

func (t *GormTaxCatalog) Get(ctx context.Context, ids []uint) ([]models.TaxRate, error) {
	if len(ids) == 0 {
		return []models.TaxRate{}, nil
	}
	var rates []models.TaxRate
	if err := t.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to load tax rates: %w", err)
	}
	return rates, nil
}

func (t *GormTaxCatalog) List(ctx context.Context) ([]models.TaxRate, error) {
	var rates []models.TaxRate
	if err := t.DB.WithContext(ctx).Order("id ASC").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to list tax rates: %w", err)
	}
	return rates, nil
}
