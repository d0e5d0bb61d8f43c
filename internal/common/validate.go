package common

import (
	"regexp"
	"sync"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-gstbill/internal/gst"
)

// gstinPattern matches the 15-character GSTIN layout: state code, PAN,
// entity digit, the literal Z, and a checksum character.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared request validator with the domain rules
// registered: `gstin` for tax registration numbers and `instate` for the
// enumerated Indian jurisdictions.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
			return gstinPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("instate", func(fl validator.FieldLevel) bool {
			return gst.KnownState(fl.Field().String())
		})
	})
	return validate
}

// ValidationDetails flattens validator errors into a field->rule map suitable
// for the JSON error envelope.
func ValidationDetails(err error) map[string]string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
