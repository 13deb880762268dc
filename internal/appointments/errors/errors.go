package errors

import (
	"errors"
	"fmt"
)

var (
	ErrSlotNotFound = errors.New("time slot not found")

	ErrBookingNotFound = errors.New("booking not found")

	// ErrSlotUnavailable is returned when the slot is closed or already booked.
	ErrSlotUnavailable = errors.New("slot no longer available")

	// ErrSlotChanged is returned when a conditional slot update matched nothing
	// because another request changed the slot first.
	ErrSlotChanged = errors.New("slot was changed concurrently")

	ErrOffGrid = errors.New("time is not on the slot grid")
)

// SlotBookedError rejects toggling a slot that holds a live booking. Callers
// show the booking instead.
type SlotBookedError struct {
	SlotID    string
	BookingID string
}

func (e *SlotBookedError) Error() string {
	return fmt.Sprintf("slot %s is booked by %s", e.SlotID, e.BookingID)
}
