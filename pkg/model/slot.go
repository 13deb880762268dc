package model

import "time"

type SlotStatus string

const (
	SlotOpen   SlotStatus = "open"
	SlotClosed SlotStatus = "closed"
	// SlotBooked is never stored; it is derived from a confirmed booking.
	SlotBooked SlotStatus = "booked"
)

// TimeSlot is one cell of a day's appointment grid. The stored status only
// records whether the slot was closed by an administrator.
type TimeSlot struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	Date      string     `json:"date" bson:"date"`
	Time      string     `json:"time" bson:"time"`
	Status    SlotStatus `json:"status" bson:"status"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

type SlotView struct {
	TimeSlot
	LiveStatus   SlotStatus `json:"live_status"`
	BookingID    string     `json:"booking_id,omitempty"`
	CustomerName string     `json:"customer_name,omitempty"`
}

type DayBoard struct {
	Date   string     `json:"date"`
	Slots  []SlotView `json:"slots"`
	Open   int        `json:"open"`
	Closed int        `json:"closed"`
	Booked int        `json:"booked"`
}
