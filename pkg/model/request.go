package model

import (
	"time"
	"travelbook/internal/finance"
	"travelbook/pkg/status"
)

const MaxPassengers = 9

type Passenger struct {
	Name         string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	TicketNumber string `json:"ticket_number" bson:"ticket_number" validate:"omitempty,max=32"`
}

// Request is a customer's travel request with its money fields.
type Request struct {
	ID               string        `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerName     string        `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	Phone            string        `json:"phone" bson:"phone" validate:"omitempty,e164"`
	Email            string        `json:"email" bson:"email" validate:"omitempty,email"`
	Passengers       []Passenger   `json:"passengers" bson:"passengers" validate:"max=9,dive"`
	Airline          string        `json:"airline" bson:"airline" validate:"omitempty,max=100"`
	PNR              string        `json:"pnr" bson:"pnr" validate:"omitempty,alphanum,max=12"`
	DepartureAirport string        `json:"departure_airport" bson:"departure_airport" validate:"omitempty,max=100"`
	ArrivalAirport   string        `json:"arrival_airport" bson:"arrival_airport" validate:"omitempty,max=100"`
	TravelDate       string        `json:"travel_date" bson:"travel_date" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate       string        `json:"return_date" bson:"return_date" validate:"omitempty,datetime=2006-01-02"`
	Notice           string        `json:"notice" bson:"notice" validate:"omitempty,max=2000"`
	InvoiceNumber    string        `json:"invoice_number" bson:"invoice_number" validate:"omitempty,max=40"`
	Status           status.Status `json:"status" bson:"status" validate:"required,request_status"`

	finance.Values `bson:",inline"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// PassengerNames falls back to the customer when no passengers were entered.
func (r *Request) PassengerNames() []string {
	if len(r.Passengers) == 0 {
		return []string{r.CustomerName}
	}
	names := make([]string, len(r.Passengers))
	for i, p := range r.Passengers {
		names[i] = p.Name
	}
	return names
}

type RequestCreate struct {
	CustomerName     string      `json:"customer_name"`
	Phone            string      `json:"phone"`
	Email            string      `json:"email"`
	Passengers       []Passenger `json:"passengers"`
	Airline          string      `json:"airline"`
	PNR              string      `json:"pnr"`
	DepartureAirport string      `json:"departure_airport"`
	ArrivalAirport   string      `json:"arrival_airport"`
	TravelDate       string      `json:"travel_date"`
	ReturnDate       string      `json:"return_date"`
	Notice           string      `json:"notice"`
	InvoiceNumber    string      `json:"invoice_number"`
	Status           string      `json:"status"`

	finance.Input
}

// RequestUpdate is a PATCH body; nil fields are left untouched.
type RequestUpdate struct {
	CustomerName     *string      `json:"customer_name,omitempty"`
	Phone            *string      `json:"phone,omitempty"`
	Email            *string      `json:"email,omitempty"`
	Passengers       *[]Passenger `json:"passengers,omitempty"`
	Airline          *string      `json:"airline,omitempty"`
	PNR              *string      `json:"pnr,omitempty"`
	DepartureAirport *string      `json:"departure_airport,omitempty"`
	ArrivalAirport   *string      `json:"arrival_airport,omitempty"`
	TravelDate       *string      `json:"travel_date,omitempty"`
	ReturnDate       *string      `json:"return_date,omitempty"`
	Notice           *string      `json:"notice,omitempty"`
	InvoiceNumber    *string      `json:"invoice_number,omitempty"`
	Status           *string      `json:"status,omitempty"`

	finance.Input
}
