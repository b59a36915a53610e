package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestBookingToReservation(t *testing.T) {
	deluxe := RoomType{ID: 2, TypeName: "Deluxe"}
	legacy := Room{Model: gorm.Model{ID: 1}, RoomNumber: "101"}
	booked := Room{Model: gorm.Model{ID: 9}, RoomNumber: "204", RoomCode: "D-204", RoomType: deluxe}

	b := Booking{
		ID:            7,
		ReferenceCode: "BK-2026-0007",
		CustomerID:    55,
		Customer:      Customer{FirstName: " Anna ", LastName: "Schmidt"},
		Room:          legacy,
		Rooms:         []BookingRoom{{RoomID: booked.ID, Room: booked}},
	}

	res := b.ToReservation()
	assert.Equal(t, uint(7), res.ID)
	assert.Equal(t, "Anna Schmidt", res.GuestName)
	assert.Equal(t, "D-204", res.RoomNo)
	assert.Equal(t, "Deluxe", res.RoomType)

	// ไม่มี booking_rooms ใช้ห้องหลักของ booking
	b.Rooms = nil
	res = b.ToReservation()
	assert.Equal(t, "101", res.RoomNo)
	assert.Empty(t, res.RoomType)

	b.Room = Room{}
	assert.Empty(t, b.PrimaryRoomNo())
}

func TestCustomerDisplayName(t *testing.T) {
	assert.Equal(t, "Kasun Perera", Customer{FullName: " Kasun Perera "}.DisplayName())
	assert.Equal(t, "Kasun", Customer{FirstName: "Kasun"}.DisplayName())
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidBillingMethod(BillingMethodCash))
	assert.False(t, ValidBillingMethod("Card"))
	assert.True(t, ValidAddonStatus(AddonStatusCompleted))
	assert.False(t, ValidAddonStatus("Done"))
}
