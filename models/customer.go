// models/customer.go
package models

import (
	"strings"

	"gorm.io/gorm"
)

type Customer struct {
	gorm.Model

	// Identification = เลขบัตรประชาชน / passport ที่ใช้ค้นหาลูกค้า walk-in
	// nil = ลงทะเบียนโดยไม่มีเลขบัตร (unique index ยอมให้ NULL ซ้ำได้)
	Identification *string `gorm:"size:64;uniqueIndex" json:"identification"`
	FirstName      string  `gorm:"size:100" json:"firstName"`
	LastName       string  `gorm:"size:100" json:"lastName"`
	FullName       string  `gorm:"size:255" json:"fullName"`
	Email          string  `gorm:"size:150" json:"email"`
	Phone          string  `gorm:"size:50" json:"phone"`
}

// CustomerInput is the registration payload of the cash-sale sub-flow.
type CustomerInput struct {
	Identification string `json:"identification"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
}

func (c Customer) DisplayName() string {
	if strings.TrimSpace(c.FullName) != "" {
		return strings.TrimSpace(c.FullName)
	}
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
