package services

import (
	"context"
	"fmt"

	"hotel-addons/models"

	"github.com/skip2/go-qrcode"
)

const invoiceQRSize = 256

// InvoiceQRPayload is the text encoded in the folio QR: number, payer, total, status.
func InvoiceQRPayload(inv models.DerivedInvoice) string {
	return fmt.Sprintf("%s|%s|%s %s|%s",
		inv.InvoiceNumber, inv.PayerRef, inv.Currency, inv.TotalAmount.StringFixed(2), inv.Status)
}

// InvoiceQR renders the derived invoice of one addon as a PNG QR code.
func (s *InvoiceService) InvoiceQR(ctx context.Context, id uint) ([]byte, error) {
	inv, err := s.DeriveForAddon(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(InvoiceQRPayload(inv.Invoice), qrcode.Medium, invoiceQRSize)
	if err != nil {
		return nil, fmt.Errorf("encode invoice qr: %w", err)
	}
	return png, nil
}
