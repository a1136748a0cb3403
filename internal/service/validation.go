package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wardwatch/grievance-service/internal/domain"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "complaint_category", func(fl validator.FieldLevel) bool {
		return domain.ComplaintCategory(fl.Field().String()).Valid()
	})
	mustRegister(v, "complaint_priority", func(fl validator.FieldLevel) bool {
		return domain.ComplaintPriority(fl.Field().String()).Valid()
	})
	mustRegister(v, "complaint_status", func(fl validator.FieldLevel) bool {
		return domain.ComplaintStatus(fl.Field().String()).Valid()
	})
	mustRegister(v, "discussion_language", func(fl validator.FieldLevel) bool {
		return domain.DiscussionLanguage(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// fieldErrors runs struct validation and converts failures into API field errors.
func fieldErrors(input any) []apperrors.FieldError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "gte", "lte":
		return "is out of range"
	case "complaint_category":
		return "must be one of " + joinValues(domain.ComplaintCategories)
	case "complaint_priority":
		return "must be one of Low, Medium, High, Critical"
	case "complaint_status":
		return "must be one of " + joinValues(domain.ComplaintStatuses)
	case "discussion_language":
		return "must be one of " + joinValues(domain.DiscussionLanguages)
	default:
		return "is invalid"
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// validateInput wraps fieldErrors into a DomainError, appending any extra failures.
func validateInput(input any, extra ...apperrors.FieldError) error {
	fields := append(fieldErrors(input), extra...)
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewFieldValidationError(fields)
}
