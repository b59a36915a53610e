package models

// Billing methods (billing mode) ที่ใช้ได้ตอนขาย add-on
const (
	BillingMethodCash      = "Cash"
	BillingMethodRoom      = "Room"
	BillingMethodReference = "Reference No."
)

// Addon line status
const (
	AddonStatusPending   = "Pending"
	AddonStatusCompleted = "Completed"
	AddonStatusCancelled = "Cancelled"
)

// Catalog item status
const (
	ServiceStatusActive   = "Active"
	ServiceStatusInactive = "Inactive"
)

// Derived invoice statuses
const (
	InvoiceStatusPending = "Pending"
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusPosted  = "Posted"
	InvoiceStatusVoided  = "Voided"
)

func ValidBillingMethod(m string) bool {
	switch m {
	case BillingMethodCash, BillingMethodRoom, BillingMethodReference:
		return true
	}
	return false
}

func ValidAddonStatus(s string) bool {
	switch s {
	case AddonStatusPending, AddonStatusCompleted, AddonStatusCancelled:
		return true
	}
	return false
}
