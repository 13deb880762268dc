package validator

import (
	"errors"
	"fmt"
	"strings"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"
	"travelbook/pkg/status"

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

type RequestValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRequestValidator(log *logger.Logger) *RequestValidator {
	v := validator.New()

	if err := v.RegisterValidation("request_status", validateRequestStatus); err != nil {
		log.Fatal("Failed to register 'request_status' validator", "error", err)
	}

	return &RequestValidator{
		validate: v,
		logger:   log,
	}
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	return status.Status(fl.Field().String()).IsValid()
}

func (v *RequestValidator) ValidateRequest(req *model.Request) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// both are YYYY-MM-DD, so string order is date order
	if req.TravelDate != "" && req.ReturnDate != "" && req.ReturnDate < req.TravelDate {
		return ValidationErrors{{Field: "ReturnDate", Message: "ReturnDate must not be before TravelDate"}}
	}
	return nil
}

func (v *RequestValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			if err.Field() == "Passengers" {
				message = fmt.Sprintf("%s must have at most %s entries", err.Field(), err.Param())
			} else {
				message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
			}
		case "e164":
			message = fmt.Sprintf("%s must be a valid phone number in international format (e.g., +491512345678)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "alphanum":
			message = fmt.Sprintf("%s must contain only letters and digits", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "request_status":
			message = fmt.Sprintf("%s must be one of: draft pending confirmed cancelled", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
