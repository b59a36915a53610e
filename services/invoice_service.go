package services

import (
	"context"
	"fmt"
	"strings"

	"hotel-addons/apperrors"
	"hotel-addons/models"
	"hotel-addons/store"

	"github.com/shopspring/decimal"
)

// AddonInvoice pairs a committed line with its derived invoice.
type AddonInvoice struct {
	Addon   models.ReservationServiceAddon `json:"addon"`
	Invoice models.DerivedInvoice          `json:"invoice"`
}

// PayerStatement is the folio view of every live addon of one payer.
// Subtotal/TaxAmount/TotalAmount come from the derived invoices and skip
// Voided lines. TotalPrice is the order store total: sum of totalPrice over
// all non-deleted addons, before tax.
type PayerStatement struct {
	PayerRef    string          `json:"payerRef"`
	Lines       []AddonInvoice  `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// InvoiceService derives invoices on read. It holds no invoice state.
type InvoiceService struct {
	Addons      store.AddonStore
	Taxes       TaxCatalog
	DefaultRate decimal.Decimal
}

func NewInvoiceService(addons store.AddonStore, taxes TaxCatalog, defaultRate decimal.Decimal) *InvoiceService {
	return &InvoiceService{Addons: addons, Taxes: taxes, DefaultRate: defaultRate}
}

// RateFor resolves the tax fraction for an addon from its tax snapshot.
func (s *InvoiceService) RateFor(ctx context.Context, addon models.ReservationServiceAddon) (decimal.Decimal, error) {
	ids := addon.TaxIDList()
	if len(ids) == 0 || s.Taxes == nil {
		return s.DefaultRate, nil
	}
	rates, err := s.Taxes.Get(ctx, ids)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load taxes for addon %d: %w", addon.ID, err)
	}
	return TaxRateFraction(rates), nil
}

func (s *InvoiceService) DeriveForAddon(ctx context.Context, id uint) (*AddonInvoice, error) {
	addon, err := s.Addons.GetAddon(ctx, id)
	if err != nil {
		return nil, err
	}
	rate, err := s.RateFor(ctx, *addon)
	if err != nil {
		return nil, err
	}
	return &AddonInvoice{Addon: *addon, Invoice: DeriveInvoice(*addon, rate)}, nil
}

func (s *InvoiceService) StatementForPayer(ctx context.Context, payerRef string) (*PayerStatement, error) {
	payerRef = strings.TrimSpace(payerRef)
	if payerRef == "" {
		return nil, apperrors.Validation("payerRef", "payer reference is required")
	}
	addons, err := s.Addons.ListAddons(ctx, store.AddonFilter{PayerRef: payerRef})
	if err != nil {
		return nil, err
	}

	stmt := &PayerStatement{
		PayerRef:    payerRef,
		Lines:       make([]AddonInvoice, 0, len(addons)),
		Subtotal:    decimal.Zero,
		TaxAmount:   decimal.Zero,
		TotalAmount: decimal.Zero,
		TotalPrice:  decimal.Zero,
	}
	for _, a := range addons {
		rate, err := s.RateFor(ctx, a)
		if err != nil {
			return nil, err
		}
		inv := DeriveInvoice(a, rate)
		stmt.Lines = append(stmt.Lines, AddonInvoice{Addon: a, Invoice: inv})
		if inv.Status == models.InvoiceStatusVoided {
			continue
		}
		stmt.Subtotal = stmt.Subtotal.Add(inv.Subtotal)
		stmt.TaxAmount = stmt.TaxAmount.Add(inv.TaxAmount)
		stmt.TotalAmount = stmt.TotalAmount.Add(inv.TotalAmount)
	}
	return stmt, nil
}
