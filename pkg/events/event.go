// Package events is the in-process event bus. Local subscribers run first,
// in the publisher's goroutine; the configured sink forwards afterwards.
package events

import "time"

type Type string

const (
	SlotsGenerated       Type = "slots.generated"
	SlotToggled          Type = "slot.toggled"
	BookingCreated       Type = "booking.created"
	BookingCancelled     Type = "booking.cancelled"
	BookingStatusChanged Type = "booking.status_changed"
	RequestCreated       Type = "request.created"
	RequestUpdated       Type = "request.updated"
	RequestDeleted       Type = "request.deleted"
	ItemRestored         Type = "item.restored"
)

type Event struct {
	ID             string    `json:"id"`
	Type           Type      `json:"type"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Subject        string    `json:"subject"`
	OccurredAt     time.Time `json:"occurred_at"`
	Data           any       `json:"data,omitempty"`
}

func New(typ Type, subject string, data any) Event {
	return Event{Type: typ, Subject: subject, Data: data}
}
