package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var timeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

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

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("slot_date", validateSlotDate); err != nil {
		log.Fatal("Failed to register 'slot_date' validator", "error", err)
	}
	if err := v.RegisterValidation("slot_time", validateSlotTime); err != nil {
		log.Fatal("Failed to register 'slot_time' validator", "error", err)
	}

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

// IsDate reports whether s is a real calendar day in YYYY-MM-DD form.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsTime reports whether s is a wall clock time in HH:MM form.
func IsTime(s string) bool {
	return timeRegex.MatchString(s)
}

func validateSlotDate(fl validator.FieldLevel) bool {
	return IsDate(fl.Field().String())
}

func validateSlotTime(fl validator.FieldLevel) bool {
	return IsTime(fl.Field().String())
}

func (v *AppointmentValidator) ValidateDate(date string) error {
	if !IsDate(date) {
		return ValidationErrors{{Field: "date", Message: "date must be a calendar day in YYYY-MM-DD format"}}
	}
	return nil
}

func (v *AppointmentValidator) ValidateCreate(in *model.BookingCreate) error {
	return v.validateStruct(in)
}

func (v *AppointmentValidator) ValidateStatusUpdate(in *model.BookingStatusUpdate) error {
	return v.validateStruct(in)
}

func (v *AppointmentValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "slot_date":
			message = fmt.Sprintf("%s must be a calendar day in YYYY-MM-DD format", err.Field())
		case "slot_time":
			message = fmt.Sprintf("%s must be a time in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
