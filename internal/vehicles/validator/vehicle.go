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

var plateRegex = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)

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

type VehicleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVehicleValidator(log *logger.Logger) *VehicleValidator {
	v := validator.New()

	if err := v.RegisterValidation("plate_number", validatePlateNumber); err != nil {
		log.Fatal("Failed to register 'plate_number' validator",
			"error", err,
		)
	}

	log.Info("Vehicle validator initialized successfully")

	return &VehicleValidator{
		validate: v,
		logger:   log,
	}
}

func validatePlateNumber(fl validator.FieldLevel) bool {
	return plateRegex.MatchString(fl.Field().String())
}

func (v *VehicleValidator) Validate(vehicle *model.Vehicle) error {
	if err := v.validate.Struct(vehicle); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *VehicleValidator) ValidateUpdate(updates *model.VehicleUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *VehicleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", err.Field())
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
