package model

import "time"

// InvoiceSettings is the issuing company's profile printed on invoices.
type InvoiceSettings struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	OrganizationID string    `json:"organization_id" bson:"organization_id"`
	CompanyName    string    `json:"company_name" bson:"company_name" validate:"required,min=2,max=120"`
	OwnerName      string    `json:"owner_name" bson:"owner_name" validate:"omitempty,max=120"`
	Street         string    `json:"street" bson:"street" validate:"omitempty,max=120"`
	PostalCode     string    `json:"postal_code" bson:"postal_code" validate:"omitempty,max=16"`
	City           string    `json:"city" bson:"city" validate:"omitempty,max=80"`
	Country        string    `json:"country" bson:"country" validate:"omitempty,max=80"`
	Phone          string    `json:"phone" bson:"phone" validate:"omitempty,max=32"`
	Email          string    `json:"email" bson:"email" validate:"omitempty,email"`
	Website        string    `json:"website" bson:"website" validate:"omitempty,max=120"`
	TaxID          string    `json:"tax_id" bson:"tax_id" validate:"omitempty,max=40"`
	BankName       string    `json:"bank_name" bson:"bank_name" validate:"omitempty,max=120"`
	AccountHolder  string    `json:"account_holder" bson:"account_holder" validate:"omitempty,max=120"`
	IBAN           string    `json:"iban" bson:"iban" validate:"omitempty,iban"`
	BIC            string    `json:"bic" bson:"bic" validate:"omitempty,bic"`
	Logo           []byte    `json:"logo,omitempty" bson:"logo,omitempty"`
	ShowQR         bool      `json:"show_qr" bson:"show_qr"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Address joins the street and city lines, skipping empty parts.
func (s *InvoiceSettings) Address() []string {
	var lines []string
	if s.Street != "" {
		lines = append(lines, s.Street)
	}
	city := s.PostalCode
	if s.City != "" {
		if city != "" {
			city += " "
		}
		city += s.City
	}
	if city != "" {
		lines = append(lines, city)
	}
	if s.Country != "" {
		lines = append(lines, s.Country)
	}
	return lines
}
