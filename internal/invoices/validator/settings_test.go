package validator

import (
	"errors"
	"testing"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"
)

func TestValidIBAN(t *testing.T) {
	tests := []struct {
		iban string
		want bool
	}{
		{"DE89370400440532013000", true},
		{"DE89 3704 0044 0532 0130 00", true},
		{"de89370400440532013000", true},
		{"GB82WEST12345698765432", true},
		{"DE89370400440532013001", false},
		{"DE8937040044", false},
		{"1289370400440532013000", false},
		{"DE89-3704-0044-0532-0130-00", false},
	}

	for _, tt := range tests {
		t.Run(tt.iban, func(t *testing.T) {
			if got := ValidIBAN(tt.iban); got != tt.want {
				t.Errorf("ValidIBAN(%q) = %v, want %v", tt.iban, got, tt.want)
			}
		})
	}
}

func TestValidateSettings(t *testing.T) {
	v := NewSettingsValidator(logger.Discard())

	valid := func() *model.InvoiceSettings {
		return &model.InvoiceSettings{
			OrganizationID: "org-1",
			CompanyName:    "Reisebüro Yildiz",
			Email:          "info@yildiz-reisen.de",
			IBAN:           "DE89370400440532013000",
			BIC:            "COBADEFFXXX",
		}
	}

	tests := []struct {
		name      string
		mutate    func(s *model.InvoiceSettings)
		wantField string
		wantMsg   string
	}{
		{name: "valid"},
		{name: "empty bank details", mutate: func(s *model.InvoiceSettings) { s.IBAN, s.BIC = "", "" }},
		{
			name:      "missing company",
			mutate:    func(s *model.InvoiceSettings) { s.CompanyName = "" },
			wantField: "CompanyName",
			wantMsg:   "CompanyName is required",
		},
		{
			name:      "bad iban",
			mutate:    func(s *model.InvoiceSettings) { s.IBAN = "DE00370400440532013000" },
			wantField: "IBAN",
			wantMsg:   "IBAN must be a valid IBAN",
		},
		{
			name:      "bad bic",
			mutate:    func(s *model.InvoiceSettings) { s.BIC = "COBA" },
			wantField: "BIC",
			wantMsg:   "BIC must be a valid BIC (8 or 11 characters)",
		},
		{
			name:      "bad email",
			mutate:    func(s *model.InvoiceSettings) { s.Email = "info-at-yildiz" },
			wantField: "Email",
			wantMsg:   "Email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			if tt.mutate != nil {
				tt.mutate(s)
			}
			err := v.ValidateSettings(s)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateSettings() error = %v", err)
				}
				return
			}

			var errs ValidationErrors
			if !errors.As(err, &errs) || len(errs) != 1 {
				t.Fatalf("ValidateSettings() error = %v, want one ValidationError", err)
			}
			if errs[0].Field != tt.wantField || errs[0].Message != tt.wantMsg {
				t.Errorf("got %+v, want %s: %s", errs[0], tt.wantField, tt.wantMsg)
			}
		})
	}
}
