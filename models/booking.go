package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking is the hotel reservation that Room / Reference No. add-ons are billed to.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	RoomID    *uint          `gorm:"column:room_id;index" json:"roomId,omitempty"`

	CustomerID    uint       `gorm:"index;column:customer_id" json:"customer_id"`
	ReferenceCode string     `gorm:"column:reference_code;size:64;index" json:"reference_code,omitempty"`
	Status        string     `gorm:"column:status;size:64" json:"status,omitempty"`
	CheckIn       *time.Time `gorm:"column:check_in" json:"check_in,omitempty"`
	CheckOut      *time.Time `gorm:"column:check_out" json:"check_out,omitempty"`

	Room     Room          `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	Customer Customer      `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	Rooms    []BookingRoom `gorm:"foreignKey:BookingID" json:"rooms"`
}

// primaryRoom: ใช้ห้องแรกของ booking.rooms ก่อน ถ้าไม่มีค่อยใช้ booking.room
func (b Booking) primaryRoom() Room {
	if len(b.Rooms) > 0 && b.Rooms[0].Room.ID != 0 {
		return b.Rooms[0].Room
	}
	return b.Room
}

func (b Booking) PrimaryRoomNo() string {
	if room := b.primaryRoom(); room.ID != 0 {
		return room.DisplayNumber()
	}
	return ""
}

// Reservation is the read-only view of a booking handed to the order workflow.
type Reservation struct {
	ID            uint       `json:"id"`
	ReferenceCode string     `json:"referenceCode"`
	Status        string     `json:"status"`
	CustomerID    uint       `json:"customerId"`
	GuestName     string     `json:"guestName"`
	RoomNo        string     `json:"roomNo"`
	RoomType      string     `json:"roomType,omitempty"`
	CheckIn       *time.Time `json:"checkIn,omitempty"`
	CheckOut      *time.Time `json:"checkOut,omitempty"`
}

func (b Booking) ToReservation() Reservation {
	return Reservation{
		ID:            b.ID,
		ReferenceCode: b.ReferenceCode,
		Status:        b.Status,
		CustomerID:    b.CustomerID,
		GuestName:     b.Customer.DisplayName(),
		RoomNo:        b.PrimaryRoomNo(),
		RoomType:      b.primaryRoom().RoomType.TypeName,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
	}
}
