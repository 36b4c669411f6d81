package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"deskly/pkg/config"
	"deskly/pkg/logger"
	"deskly/pkg/model"
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
	minDur   time.Duration
	maxDur   time.Duration
	now      func() time.Time
}

func NewBookingValidator(cfg *config.Config, log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
		minDur:   cfg.MinBookingDuration,
		maxDur:   cfg.MaxBookingDuration,
		now:      time.Now,
	}
}

// ValidateRequest checks shape first, then the temporal rules: end after
// start, start not on a past calendar day, duration within bounds.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	var temporalErrs ValidationErrors

	if !req.EndTime.After(req.StartTime) {
		temporalErrs = append(temporalErrs, ValidationError{
			Field:   "EndTime",
			Message: "EndTime must be after StartTime",
		})
		return temporalErrs
	}

	today := v.now().UTC().Truncate(24 * time.Hour)
	if req.StartTime.UTC().Truncate(24 * time.Hour).Before(today) {
		temporalErrs = append(temporalErrs, ValidationError{
			Field:   "StartTime",
			Message: "StartTime cannot be on a past date",
		})
	}

	duration := req.EndTime.Sub(req.StartTime)
	if duration < v.minDur {
		temporalErrs = append(temporalErrs, ValidationError{
			Field:   "EndTime",
			Message: fmt.Sprintf("booking must last at least %s", v.minDur),
		})
	}
	if duration > v.maxDur {
		temporalErrs = append(temporalErrs, ValidationError{
			Field:   "EndTime",
			Message: fmt.Sprintf("booking must last at most %s", v.maxDur),
		})
	}

	if len(temporalErrs) > 0 {
		return temporalErrs
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
