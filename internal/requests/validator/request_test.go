package validator

import (
	"errors"
	"strings"
	"testing"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"
	"travelbook/pkg/status"
)

func validRequest() *model.Request {
	return &model.Request{
		CustomerName: "Ayse Demir",
		Phone:        "+491512345678",
		Email:        "ayse@example.com",
		Passengers:   []model.Passenger{{Name: "Ayse Demir", TicketNumber: "2351234567890"}},
		PNR:          "ABC123",
		TravelDate:   "2025-07-01",
		ReturnDate:   "2025-07-15",
		Status:       status.Draft,
	}
}

func TestValidateRequest(t *testing.T) {
	v := NewRequestValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(r *model.Request)
		wantField string
	}{
		{name: "valid", mutate: func(r *model.Request) {}},
		{name: "missing name", mutate: func(r *model.Request) { r.CustomerName = "" }, wantField: "CustomerName"},
		{name: "bad phone", mutate: func(r *model.Request) { r.Phone = "0151 234" }, wantField: "Phone"},
		{name: "bad email", mutate: func(r *model.Request) { r.Email = "not-an-email" }, wantField: "Email"},
		{name: "pnr with dash", mutate: func(r *model.Request) { r.PNR = "AB-123" }, wantField: "PNR"},
		{name: "unknown status", mutate: func(r *model.Request) { r.Status = "archived" }, wantField: "Status"},
		{name: "bad travel date", mutate: func(r *model.Request) { r.TravelDate = "01.07.2025" }, wantField: "TravelDate"},
		{name: "return before travel", mutate: func(r *model.Request) { r.ReturnDate = "2025-06-30" }, wantField: "ReturnDate"},
		{
			name: "too many passengers",
			mutate: func(r *model.Request) {
				r.Passengers = make([]model.Passenger, model.MaxPassengers+1)
				for i := range r.Passengers {
					r.Passengers[i].Name = "P"
				}
			},
			wantField: "Passengers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(r)
			err := v.ValidateRequest(r)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error = %v, want ValidationErrors", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %s", verrs, tt.wantField)
			}
			if !strings.HasPrefix(err.Error(), "validation failed:") {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}
