package validator

import (
	"errors"
	"fmt"
	"strings"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type SettingsValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSettingsValidator(log *logger.Logger) *SettingsValidator {
	v := validator.New()

	if err := v.RegisterValidation("iban", validateIBAN); err != nil {
		log.Fatal("Failed to register 'iban' validator", "error", err)
	}

	return &SettingsValidator{
		validate: v,
		logger:   log,
	}
}

// validateIBAN checks the length and the ISO 13616 mod-97 checksum.
func validateIBAN(fl validator.FieldLevel) bool {
	return ValidIBAN(fl.Field().String())
}

func ValidIBAN(iban string) bool {
	iban = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}
	if iban[0] < 'A' || iban[0] > 'Z' || iban[1] < 'A' || iban[1] > 'Z' {
		return false
	}

	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, c := range rearranged {
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			remainder = (remainder*100 + int(c-'A'+10)) % 97
		default:
			return false
		}
	}
	return remainder == 1
}

func (v *SettingsValidator) ValidateSettings(settings *model.InvoiceSettings) error {
	if err := v.validate.Struct(settings); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *SettingsValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "iban":
			message = fmt.Sprintf("%s must be a valid IBAN", err.Field())
		case "bic":
			message = fmt.Sprintf("%s must be a valid BIC (8 or 11 characters)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
