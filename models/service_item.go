package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ServiceItemMaster is a sellable add-on service (spa, transfer, ...).
// Never hard-deleted: Inactive is the soft-deleted state.
type ServiceItemMaster struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	ServiceName string             `gorm:"column:service_name;size:150;not null" json:"serviceName"`
	Description string             `gorm:"type:text" json:"description"`
	Category    string             `gorm:"size:100;index" json:"category"`
	Pricing     []ServiceItemPrice `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"pricing"`
	TaxIDs      datatypes.JSON     `gorm:"column:tax_ids" json:"taxIds"`
	UnitType    string             `gorm:"column:unit_type;size:50" json:"unitType"`
	Status      string             `gorm:"size:20;index;default:Active" json:"status"`

	CreatedBy string    `gorm:"size:150" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedBy string    `gorm:"size:150" json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ServiceItemPrice: ราคาต่อสกุลเงิน หนึ่ง currency ต่อหนึ่ง item เท่านั้น (unique index)
type ServiceItemPrice struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	ServiceID uint            `gorm:"not null;uniqueIndex:idx_service_currency" json:"-"`
	Currency  string          `gorm:"size:3;not null;uniqueIndex:idx_service_currency" json:"currency"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

// PriceFor returns the amount for a currency code (case-insensitive).
func (s ServiceItemMaster) PriceFor(currency string) (decimal.Decimal, bool) {
	for _, p := range s.Pricing {
		if strings.EqualFold(p.Currency, currency) {
			return p.Amount, true
		}
	}
	return decimal.Zero, false
}

func (s ServiceItemMaster) IsActive() bool {
	return s.Status == ServiceStatusActive
}

func (s ServiceItemMaster) TaxIDList() []uint {
	return DecodeTaxIDs(s.TaxIDs)
}

func EncodeTaxIDs(ids []uint) datatypes.JSON {
	if len(ids) == 0 {
		return datatypes.JSON("[]")
	}
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}

func DecodeTaxIDs(raw datatypes.JSON) []uint {
	if len(raw) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}
