package models

type Currency struct {
	Code   string `gorm:"primaryKey;size:3" json:"code"`
	Name   string `gorm:"size:100" json:"name"`
	Symbol string `gorm:"size:10" json:"symbol"`
}
