package models

import "github.com/shopspring/decimal"

// DerivedInvoice is computed from an addon on every read and never stored.
type DerivedInvoice struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	AddonID       uint            `json:"addonId"`
	PayerRef      string          `json:"payerRef"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Currency      string          `json:"currency"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}
