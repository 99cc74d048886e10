package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	// Canonical plate form: uppercase alphanumerics, 2-12 chars. Input is
	// normalized by pkg/sanitizer before validation.
	plateRegex = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)
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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("plate_number", validatePlateNumber); err != nil {
		log.Fatal("Failed to register 'plate_number' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validatePlateNumber(fl validator.FieldLevel) bool {
	return plateRegex.MatchString(fl.Field().String())
}

// ValidateRequest checks a caller-supplied admission request before any
// storage work happens. Malformed dates never reach the availability engine.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !req.EndDate.After(req.StartDate) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndDate",
				Message: "end_date must be after start_date",
			},
		}
	}

	return nil
}

// Validate checks a fully assembled booking right before it is persisted.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !booking.EndDate.After(booking.StartDate) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndDate",
				Message: "end_date must be after start_date",
			},
		}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "plate_number":
			message = fmt.Sprintf("%s must be 2-12 uppercase letters or digits", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
