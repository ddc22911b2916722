package domain

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("assignment_status", func(fl validator.FieldLevel) bool {
			return AssignmentStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
			return BookingStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("booking_kind", func(fl validator.FieldLevel) bool {
			return BookingKind(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("driver_status", func(fl validator.FieldLevel) bool {
			return DriverStatus(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// Validate runs struct tags and converts failures into a ValidationError keyed by json name.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationError{Msg: err.Error(), Err: err}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return ValidationError{Fields: fields, Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "assignment_status":
		return "must be one of assigned, in_progress, completed, cancelled"
	case "booking_status":
		return "must be one of pending, confirmed, completed, cancelled"
	case "booking_kind":
		return "must be tour or airport"
	case "driver_status":
		return "must be one of available, active, busy, inactive"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
