package model

import (
	"reflect"
	"testing"
	"travelbook/pkg/status"
)

func TestBooking_Live(t *testing.T) {
	tests := []struct {
		status status.Status
		want   bool
	}{
		{status.Confirmed, true},
		{status.Cancelled, false},
		{status.Pending, false},
	}
	for _, tt := range tests {
		b := &Booking{Status: tt.status}
		if got := b.Live(); got != tt.want {
			t.Errorf("Booking{%s}.Live() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRequest_PassengerNames(t *testing.T) {
	r := &Request{CustomerName: "Ayse Demir"}
	if got := r.PassengerNames(); !reflect.DeepEqual(got, []string{"Ayse Demir"}) {
		t.Errorf("fallback = %v", got)
	}

	r.Passengers = []Passenger{{Name: "Ayse Demir"}, {Name: "Can Demir"}}
	if got := r.PassengerNames(); !reflect.DeepEqual(got, []string{"Ayse Demir", "Can Demir"}) {
		t.Errorf("names = %v", got)
	}
}

func TestInvoiceSettings_Address(t *testing.T) {
	tests := []struct {
		name string
		s    InvoiceSettings
		want []string
	}{
		{"full", InvoiceSettings{Street: "Hauptstr. 1", PostalCode: "10115", City: "Berlin", Country: "Deutschland"}, []string{"Hauptstr. 1", "10115 Berlin", "Deutschland"}},
		{"city only", InvoiceSettings{City: "Berlin"}, []string{"Berlin"}},
		{"empty", InvoiceSettings{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Address(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Address() = %v, want %v", got, tt.want)
			}
		})
	}
}
