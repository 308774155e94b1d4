package provisioning

import (
	"errors"
	"reflect"
	"strings"

	"github.com/campus/backend/internal/domain/identity"
	"github.com/campus/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// tagAccountEmail applies the login email rule of identity.NewUser, which is
// stricter than the RFC-based "email" tag.
const tagAccountEmail = "account_email"

// newValidator reports JSON field names in validation errors
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(tagAccountEmail, func(fl validator.FieldLevel) bool {
		return identity.IsValidEmail(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct-tag validation and converts the first failure to a VALIDATION_ERROR
func (s *Service) validateStruct(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return shared.NewValidationError(fe.Field(), validationMessage(fe))
	}
	return shared.NewValidationError("", err.Error())
}

func validationMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email", tagAccountEmail:
		return field + " must be a valid email address"
	case "max":
		return field + " must be at most " + e.Param() + " characters"
	case "min":
		return field + " must contain at least " + e.Param() + " item(s)"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " is invalid"
	}
}
