package services

import (
	"fmt"
	"strings"

	"hotel-addons/models"

	"github.com/shopspring/decimal"
)

// DeriveInvoice maps an addon and a tax rate (fraction, 0.12 = 12%) to its
// billing view. The addon is taken by value and nothing is written back.
func DeriveInvoice(addon models.ReservationServiceAddon, taxRate decimal.Decimal) models.DerivedInvoice {
	status, paymentStatus := deriveStatus(addon)

	subtotal := addon.UnitPrice.Mul(decimal.NewFromInt(int64(addon.Quantity))).Round(2)
	taxAmount := subtotal.Mul(taxRate).Round(2)

	return models.DerivedInvoice{
		InvoiceNumber: InvoiceNumber(addon.PayerRef, addon.ID),
		AddonID:       addon.ID,
		PayerRef:      addon.PayerRef,
		Status:        status,
		PaymentStatus: paymentStatus,
		Currency:      addon.Currency,
		TaxRate:       taxRate,
		Subtotal:      subtotal,
		TaxAmount:     taxAmount,
		TotalAmount:   subtotal.Add(taxAmount),
	}
}

func deriveStatus(addon models.ReservationServiceAddon) (string, string) {
	// first match wins
	switch {
	case addon.BillingMethod == models.BillingMethodCash && addon.Status == models.AddonStatusCompleted:
		return models.InvoiceStatusPaid, models.InvoiceStatusPaid
	case addon.BillingMethod == models.BillingMethodRoom && addon.IsInvoiced:
		return models.InvoiceStatusPosted, models.InvoiceStatusPaid
	case addon.Status == models.AddonStatusCancelled:
		return models.InvoiceStatusVoided, models.InvoiceStatusVoided
	default:
		return models.InvoiceStatusPending, models.InvoiceStatusPending
	}
}

// InvoiceNumber is stable for a (payer, addon) pair: INV-<payer>-<000042>.
func InvoiceNumber(payerRef string, addonID uint) string {
	ref := strings.ToUpper(strings.TrimSpace(payerRef))
	ref = strings.ReplaceAll(ref, " ", "")
	if ref == "" {
		ref = "NA"
	}
	return fmt.Sprintf("INV-%s-%06d", ref, addonID)
}

// TaxRateFraction sums percentage rates (12, 10) into a fraction (0.22).
// Inactive taxes are skipped.
func TaxRateFraction(rates []models.TaxRate) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rates {
		if !r.Active {
			continue
		}
		total = total.Add(r.Rate)
	}
	return total.Div(decimal.NewFromInt(100))
}
