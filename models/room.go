package models

import (
	"strings"

	"gorm.io/gorm"
)

type Room struct {
	gorm.Model

	RoomTypeID *uint  `json:"RoomTypeID,omitempty" gorm:"column:room_type_id"`
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	RoomCode   string `json:"roomCode"   gorm:"column:room_code;type:varchar(50)"`
	Status     string `json:"status"`
	Floor      string `json:"floor" gorm:"type:varchar(10)"`

	RoomType RoomType `gorm:"foreignKey:RoomTypeID"`
}

// DisplayNumber prefers the room code the front desk prints on keys.
func (r Room) DisplayNumber() string {
	if code := strings.TrimSpace(r.RoomCode); code != "" {
		return code
	}
	return strings.TrimSpace(r.RoomNumber)
}
