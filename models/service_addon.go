package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReservationServiceAddon is one committed add-on order line.
//
// ServiceName, UnitPrice, UnitType and Currency are snapshots taken at commit and are never
// re-read from the catalog. Once IsInvoiced is true the row is frozen.
type ReservationServiceAddon struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// payer linkage: booking (Room / Reference No.) หรือ cash-sale reference
	ReservationID *uint      `gorm:"column:reservation_id;index" json:"reservationId,omitempty"`
	CustomerID    *uint      `gorm:"column:customer_id;index" json:"customerId,omitempty"`
	PayerRef      string     `gorm:"column:payer_ref;size:64;index;not null" json:"payerRef"`
	GuestName     string     `gorm:"column:guest_name;size:255" json:"guestName"`
	RoomNo        string     `gorm:"column:room_no;size:50" json:"roomNo"`
	StayCheckIn   *time.Time `gorm:"column:stay_check_in" json:"stayCheckIn,omitempty"`
	StayCheckOut  *time.Time `gorm:"column:stay_check_out" json:"stayCheckOut,omitempty"`

	ServiceID   uint            `gorm:"column:service_id;index;not null" json:"serviceId"`
	ServiceName string          `gorm:"column:service_name;size:150" json:"serviceName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unitPrice"`
	Currency    string          `gorm:"size:3" json:"currency"`
	UnitType    string          `gorm:"column:unit_type;size:50" json:"unitType"`
	TaxIDs      datatypes.JSON  `gorm:"column:tax_ids" json:"taxIds"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:decimal(14,2);not null" json:"totalPrice"`

	ServiceDate *time.Time `gorm:"column:service_date;type:date" json:"serviceDate,omitempty"`
	ServiceTime string     `gorm:"column:service_time;size:5" json:"serviceTime,omitempty"`

	BillingMethod string  `gorm:"column:billing_method;size:20;not null" json:"billingMethod"`
	ReferenceNo   *string `gorm:"column:reference_no;size:100" json:"referenceNo,omitempty"`
	Status        string  `gorm:"size:20;index;default:Pending" json:"status"`
	Notes         string  `gorm:"type:text" json:"notes,omitempty"`

	IsInvoiced bool       `gorm:"column:is_invoiced;default:false" json:"isInvoiced"`
	InvoicedAt *time.Time `gorm:"column:invoiced_at" json:"invoicedAt,omitempty"`

	// Version เริ่มที่ 1 และเพิ่มทีละ 1 ทุก mutation ภายใต้ lock ของ store
	Version uint `gorm:"not null;default:1" json:"version"`

	CreatedBy string         `gorm:"size:150" json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedBy string         `gorm:"size:150" json:"updatedBy"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedBy string         `gorm:"size:150" json:"deletedBy,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Recalculate keeps TotalPrice = Quantity x UnitPrice.
func (a *ReservationServiceAddon) Recalculate() {
	a.TotalPrice = a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity))).Round(2)
}

func (a *ReservationServiceAddon) BeforeSave(tx *gorm.DB) error {
	a.Recalculate()
	return nil
}

func (a ReservationServiceAddon) TaxIDList() []uint {
	return DecodeTaxIDs(a.TaxIDs)
}

// Clone returns a deep copy; pointer and JSON fields are not shared.
func (a ReservationServiceAddon) Clone() ReservationServiceAddon {
	out := a
	out.ReservationID = cloneUint(a.ReservationID)
	out.CustomerID = cloneUint(a.CustomerID)
	out.StayCheckIn = cloneTime(a.StayCheckIn)
	out.StayCheckOut = cloneTime(a.StayCheckOut)
	out.ServiceDate = cloneTime(a.ServiceDate)
	out.InvoicedAt = cloneTime(a.InvoicedAt)
	if a.ReferenceNo != nil {
		ref := *a.ReferenceNo
		out.ReferenceNo = &ref
	}
	if a.TaxIDs != nil {
		out.TaxIDs = append(datatypes.JSON(nil), a.TaxIDs...)
	}
	return out
}

func cloneUint(v *uint) *uint {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
