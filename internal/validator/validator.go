package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired       = "is required"
	ErrEmail          = "must be a valid email address"
	ErrMinItems       = "must contain at least %s items"
	ErrMaxItems       = "must contain at most %s items"
	ErrGreaterThan    = "must be greater than %s"
	ErrOneOf          = "must be one of: %s"
	ErrVoucherCode    = "must be 3-32 characters of uppercase letters, digits, hyphens or underscores"
	ErrDefaultInvalid = "is invalid"
)

var voucherCodeRgx = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{2,31}$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("voucher_code", validateVoucherCode)

	return validator
}

func validateVoucherCode(fl validator.FieldLevel) bool {
	return voucherCodeRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrEmail
	case "min":
		return fmt.Sprintf(ErrMinItems, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxItems, err.Param())
	case "gt":
		return fmt.Sprintf(ErrGreaterThan, err.Param())
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	case "voucher_code":
		return ErrVoucherCode
	default:
		return ErrDefaultInvalid
	}
}
