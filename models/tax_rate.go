package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is maintained outside this service; Rate is a percentage (12 = 12%).
type TaxRate struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"rate"`
	Active    bool            `gorm:"default:true" json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
