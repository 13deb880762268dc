package repository

import (
	"context"
	"fmt"
	"time"
	invoiceserrors "travelbook/internal/invoices/errors"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
)

const TableInvoiceSettings = "InvoiceSettings"

type SettingsRepository interface {
	Get(ctx context.Context, organizationID string) (*model.InvoiceSettings, error)
	// Upsert replaces the organization's settings, creating them on first save.
	Upsert(ctx context.Context, settings *model.InvoiceSettings) error
}

type settingsRepository struct {
	store recordstore.Store
}

func NewSettingsRepository(store recordstore.Store) SettingsRepository {
	return &settingsRepository{store: store}
}

func (r *settingsRepository) Get(ctx context.Context, organizationID string) (*model.InvoiceSettings, error) {
	var settings model.InvoiceSettings
	err := r.store.FindOne(ctx, TableInvoiceSettings, recordstore.Filter{"organization_id": organizationID}, &settings)
	if err != nil {
		if recordstore.IsNotFound(err) {
			return nil, invoiceserrors.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to find invoice settings: %w", err)
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *model.InvoiceSettings) error {
	settings.UpdatedAt = time.Now().UTC()

	patch := recordstore.Patch{
		"company_name":   settings.CompanyName,
		"owner_name":     settings.OwnerName,
		"street":         settings.Street,
		"postal_code":    settings.PostalCode,
		"city":           settings.City,
		"country":        settings.Country,
		"phone":          settings.Phone,
		"email":          settings.Email,
		"website":        settings.Website,
		"tax_id":         settings.TaxID,
		"bank_name":      settings.BankName,
		"account_holder": settings.AccountHolder,
		"iban":           settings.IBAN,
		"bic":            settings.BIC,
		"logo":           settings.Logo,
		"show_qr":        settings.ShowQR,
		"updated_at":     settings.UpdatedAt,
	}

	matched, err := r.store.Update(ctx, TableInvoiceSettings, patch,
		recordstore.Filter{"organization_id": settings.OrganizationID})
	if err != nil {
		return fmt.Errorf("failed to update invoice settings: %w", err)
	}
	if matched > 0 {
		return nil
	}

	settings.ID = ""
	ids, err := r.store.Insert(ctx, TableInvoiceSettings, settings)
	if err != nil {
		return fmt.Errorf("failed to insert invoice settings: %w", err)
	}
	settings.ID = ids[0]
	return nil
}

// DefaultSettings is the profile printed until an organization saves its own.
func DefaultSettings(organizationID string) *model.InvoiceSettings {
	return &model.InvoiceSettings{
		OrganizationID: organizationID,
		CompanyName:    "Travel Agency",
		Street:         "Musterstraße 1",
		PostalCode:     "40210",
		City:           "Düsseldorf",
		Country:        "Deutschland",
		Phone:          "+49 211 000000",
		Email:          "info@example.com",
		ShowQR:         true,
	}
}
