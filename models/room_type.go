package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomType is read only here; the add-on flow shows its name next to the room number.
type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TypeName  string `gorm:"size:100" json:"typeName"`
	MaxGuests uint   `json:"maxGuests"`

	CreatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
