package models

import (
	"gorm.io/gorm"
)

type BookingRoom struct {
	gorm.Model
	BookingID uint   `gorm:"index;column:booking_id" json:"booking_id"`
	RoomID    uint   `gorm:"index;column:room_id" json:"room_id"`
	Status    string `gorm:"column:status;size:64" json:"status,omitempty"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}
