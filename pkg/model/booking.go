package model

import (
	"time"
	"travelbook/pkg/status"
)

// Booking reserves one appointment slot, identified by its date and time.
type Booking struct {
	ID           string        `json:"id,omitempty" bson:"_id,omitempty"`
	Date         string        `json:"date" bson:"date" validate:"required,slot_date"`
	Time         string        `json:"time" bson:"time" validate:"required,slot_time"`
	CustomerName string        `json:"customer_name" bson:"customer_name" validate:"required,min=1,max=100"`
	Phone        string        `json:"phone" bson:"phone" validate:"required,min=3,max=32"`
	Status       status.Status `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// Live reports whether the booking still occupies its slot.
func (b *Booking) Live() bool {
	return b.Status == status.Confirmed
}

type BookingCreate struct {
	Date         string `json:"date" validate:"required,slot_date"`
	Time         string `json:"time" validate:"required,slot_time"`
	CustomerName string `json:"customer_name" validate:"required,min=1,max=100"`
	Phone        string `json:"phone" validate:"required,min=3,max=32"`
}

type BookingStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}
