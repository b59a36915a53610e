// services/addon_service.go
package services

import (
	"context"
	"log"
	"strings"
	"time"

	"hotel-addons/apperrors"
	"hotel-addons/events"
	"hotel-addons/models"
	"hotel-addons/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayerContext is who an addon is billed to, resolved by the order workflow.
type PayerContext struct {
	BillingMethod string
	PayerRef      string
	ReservationID *uint
	CustomerID    *uint
	GuestName     string
	RoomNo        string
	CheckIn       *time.Time
	CheckOut      *time.Time
	ReferenceNo   string
}

// AddonPatch: nil field = ไม่แก้
type AddonPatch struct {
	Quantity    *int       `json:"quantity"`
	ServiceDate *time.Time `json:"-"`
	ServiceTime *string    `json:"serviceTime"`
	Status      *string    `json:"status"`
	Notes       *string    `json:"notes"`
	GuestName   *string    `json:"guestName"`
	RoomNo      *string    `json:"roomNo"`
	ReferenceNo *string    `json:"referenceNo"`
}

// AddonService is the order store: the only owner of committed addon rows.
// Price lock starts at Commit, invoice lock is checked inside the store's
// critical section on every mutation.
type AddonService struct {
	Store     store.AddonStore
	Catalog   store.CatalogStore
	Publisher events.Publisher
	now       func() time.Time
}

func NewAddonService(addons store.AddonStore, catalog store.CatalogStore, publisher events.Publisher) *AddonService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AddonService{Store: addons, Catalog: catalog, Publisher: publisher, now: time.Now}
}

func validateServiceTime(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse("15:04", v); err != nil {
		return apperrors.Validation("serviceTime", "must be HH:MM")
	}
	return nil
}

func validatePayer(payer PayerContext) error {
	if !models.ValidBillingMethod(payer.BillingMethod) {
		return apperrors.Validation("billingMethod", "unknown billing method %q", payer.BillingMethod)
	}
	if strings.TrimSpace(payer.PayerRef) == "" {
		return apperrors.Validation("payerRef", "payer reference is required")
	}
	if payer.BillingMethod == models.BillingMethodReference && strings.TrimSpace(payer.ReferenceNo) == "" {
		return apperrors.Validation("referenceNo", "reference number is required for Reference No. billing")
	}
	if payer.BillingMethod != models.BillingMethodCash && payer.ReservationID == nil {
		return apperrors.Validation("reservationId", "reservation is required for %s billing", payer.BillingMethod)
	}
	return nil
}

// Commit turns one cart line into a persisted addon. The line carries the
// price agreed when it was added to the cart; from here on it is locked.
func (s *AddonService) Commit(ctx context.Context, line CartLine, payer PayerContext, actor string) (*models.ReservationServiceAddon, error) {
	if line.Quantity <= 0 {
		return nil, apperrors.Validation("quantity", "quantity must be greater than 0")
	}
	if !line.UnitPrice.IsPositive() {
		return nil, apperrors.Validation("unitPrice", "unit price must be greater than 0")
	}
	if err := validateServiceTime(line.ServiceTime); err != nil {
		return nil, err
	}
	status := line.Status
	if status == "" {
		status = models.AddonStatusPending
	}
	if !models.ValidAddonStatus(status) {
		return nil, apperrors.Validation("status", "unknown status %q", status)
	}
	if err := validatePayer(payer); err != nil {
		return nil, err
	}

	item, err := s.Catalog.GetItem(ctx, line.ServiceID)
	if err != nil {
		return nil, err
	}

	serviceName := line.ServiceName
	if serviceName == "" {
		serviceName = item.ServiceName
	}
	unitType := line.UnitType
	if unitType == "" {
		unitType = item.UnitType
	}

	now := s.now()
	addon := &models.ReservationServiceAddon{
		ReservationID: payer.ReservationID,
		CustomerID:    payer.CustomerID,
		PayerRef:      payer.PayerRef,
		GuestName:     payer.GuestName,
		RoomNo:        payer.RoomNo,
		StayCheckIn:   payer.CheckIn,
		StayCheckOut:  payer.CheckOut,
		ServiceID:     item.ID,
		ServiceName:   serviceName,
		Quantity:      line.Quantity,
		UnitPrice:     line.UnitPrice,
		Currency:      line.Currency,
		UnitType:      unitType,
		TaxIDs:        models.EncodeTaxIDs(item.TaxIDList()),
		ServiceDate:   line.ServiceDate,
		ServiceTime:   line.ServiceTime,
		BillingMethod: payer.BillingMethod,
		Status:        status,
		Notes:         line.Notes,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedBy:     actor,
		UpdatedAt:     now,
	}
	if payer.BillingMethod == models.BillingMethodReference {
		ref := strings.TrimSpace(payer.ReferenceNo)
		addon.ReferenceNo = &ref
	}
	addon.Recalculate()

	if err := s.Store.CreateAddon(ctx, addon); err != nil {
		return nil, err
	}
	log.Printf("✅ addon %d committed: %s x%d @ %s %s (payer %s)", addon.ID, addon.ServiceName, addon.Quantity, addon.UnitPrice, addon.Currency, addon.PayerRef)
	s.publish(ctx, events.AddonCommitted, *addon, actor)
	return addon, nil
}

func validatePatch(patch AddonPatch) error {
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return apperrors.Validation("quantity", "quantity must be greater than 0")
	}
	if patch.Status != nil && !models.ValidAddonStatus(*patch.Status) {
		return apperrors.Validation("status", "unknown status %q", *patch.Status)
	}
	if patch.ServiceTime != nil {
		if err := validateServiceTime(*patch.ServiceTime); err != nil {
			return err
		}
	}
	return nil
}

// Update applies a patch unless the addon is invoiced.
func (s *AddonService) Update(ctx context.Context, id uint, patch AddonPatch, actor string) (*models.ReservationServiceAddon, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.Store.MutateAddon(ctx, id, func(a *models.ReservationServiceAddon) error {
		if a.IsInvoiced {
			return apperrors.Locked(a.ID)
		}
		if patch.ReferenceNo != nil {
			ref := strings.TrimSpace(*patch.ReferenceNo)
			if a.BillingMethod != models.BillingMethodReference {
				return apperrors.Validation("referenceNo", "only Reference No. addons carry a reference number")
			}
			if ref == "" {
				return apperrors.Validation("referenceNo", "reference number cannot be empty")
			}
			a.ReferenceNo = &ref
		}
		if patch.Quantity != nil {
			a.Quantity = *patch.Quantity
		}
		if patch.ServiceDate != nil {
			d := *patch.ServiceDate
			a.ServiceDate = &d
		}
		if patch.ServiceTime != nil {
			a.ServiceTime = *patch.ServiceTime
		}
		if patch.Status != nil {
			a.Status = *patch.Status
		}
		if patch.Notes != nil {
			a.Notes = *patch.Notes
		}
		if patch.GuestName != nil {
			a.GuestName = strings.TrimSpace(*patch.GuestName)
		}
		if patch.RoomNo != nil {
			a.RoomNo = strings.TrimSpace(*patch.RoomNo)
		}
		a.UpdatedBy = actor
		a.UpdatedAt = s.now()
		a.Recalculate()
		return nil
	})
	if err != nil {
		log.Printf("❌ addon %d update rejected: %v", id, err)
		return nil, err
	}
	s.publish(ctx, events.AddonUpdated, *updated, actor)
	return updated, nil
}

// SoftDelete sets deletedAt unless the addon is invoiced.
func (s *AddonService) SoftDelete(ctx context.Context, id uint, actor string) error {
	deleted, err := s.Store.MutateAddon(ctx, id, func(a *models.ReservationServiceAddon) error {
		if a.IsInvoiced {
			return apperrors.Locked(a.ID)
		}
		now := s.now()
		a.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
		a.DeletedBy = actor
		a.UpdatedBy = actor
		a.UpdatedAt = now
		return nil
	})
	if err != nil {
		log.Printf("❌ addon %d delete rejected: %v", id, err)
		return err
	}
	log.Printf("⚠️ addon %d soft-deleted by %s", id, actor)
	s.publish(ctx, events.AddonDeleted, *deleted, actor)
	return nil
}

// MarkInvoiced sets the invoice lock. It is itself a mutation, so an already
// invoiced addon answers LockedError.
func (s *AddonService) MarkInvoiced(ctx context.Context, id uint, actor string) (*models.ReservationServiceAddon, error) {
	invoiced, err := s.Store.MutateAddon(ctx, id, func(a *models.ReservationServiceAddon) error {
		if a.IsInvoiced {
			return apperrors.Locked(a.ID)
		}
		if a.Status == models.AddonStatusCancelled {
			return apperrors.State("invoice", "cancelled addon %d cannot be invoiced", a.ID)
		}
		now := s.now()
		a.IsInvoiced = true
		a.InvoicedAt = &now
		a.UpdatedBy = actor
		a.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ addon %d invoiced by %s", id, actor)
	s.publish(ctx, events.AddonInvoiced, *invoiced, actor)
	return invoiced, nil
}

func (s *AddonService) Get(ctx context.Context, id uint) (*models.ReservationServiceAddon, error) {
	return s.Store.GetAddon(ctx, id)
}

func (s *AddonService) List(ctx context.Context, filter store.AddonFilter) ([]models.ReservationServiceAddon, error) {
	return s.Store.ListAddons(ctx, filter)
}

// TotalForPayer sums totalPrice over the payer's non-deleted addons.
func (s *AddonService) TotalForPayer(ctx context.Context, payerRef string) (decimal.Decimal, error) {
	payerRef = strings.TrimSpace(payerRef)
	if payerRef == "" {
		return decimal.Zero, apperrors.Validation("payerRef", "payer reference is required")
	}
	return s.Store.SumForPayer(ctx, payerRef)
}

func (s *AddonService) publish(ctx context.Context, typ events.EventType, addon models.ReservationServiceAddon, actor string) {
	event := events.AddonEvent{
		Type:       typ,
		AddonID:    addon.ID,
		Version:    addon.Version,
		PayerRef:   addon.PayerRef,
		Actor:      actor,
		Addon:      addon.Clone(),
		OccurredAt: s.now(),
	}
	// mutation ถูก commit แล้ว ถ้า publish พังแค่ log
	if err := s.Publisher.Publish(ctx, event); err != nil {
		log.Printf("⚠️ publish %s for addon %d failed: %v", typ, addon.ID, err)
	}
}
