package validator

import (
	"errors"
	"fmt"
	"strings"

	"homeshow/pkg/logger"
	"homeshow/pkg/model"

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

type VisitValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVisitValidator(log *logger.Logger) *VisitValidator {
	v := validator.New()

	if err := v.RegisterValidation("visit_status", validateVisitStatus); err != nil {
		log.Fatal("Failed to register 'visit_status' validator",
			"error", err,
		)
	}

	log.Info("Visit request validator initialized successfully")

	return &VisitValidator{
		validate: v,
		logger:   log,
	}
}

func validateVisitStatus(fl validator.FieldLevel) bool {
	return model.VisitStatus(fl.Field().String()).IsValid()
}

func (v *VisitValidator) Validate(request *model.VisitRequest) error {
	if err := v.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if request.RequesterID == request.RecipientID {
		return ValidationErrors{
			ValidationError{
				Field:   "RecipientID",
				Message: "requester and recipient must be different users",
			},
		}
	}

	return nil
}

func (v *VisitValidator) ValidateReschedule(update *model.VisitReschedule) error {
	return v.validateStruct(update)
}

func (v *VisitValidator) ValidateStatusChange(change *model.VisitStatusChange) error {
	return v.validateStruct(change)
}

func (v *VisitValidator) ValidateOutcome(outcome *model.VisitOutcome) error {
	return v.validateStruct(outcome)
}

func (v *VisitValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *VisitValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "visit_status":
			message = fmt.Sprintf("%s must be a known visit status", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
