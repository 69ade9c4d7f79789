package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// taxCodePattern accepts 10 digit tax codes, 13 character branch codes
// (10 digits, dash, 3 digits) and the short internal customer codes
var taxCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,14}(-[0-9]{3})?$`)

// SetupValidator configures gin's validator: JSON field names in errors,
// decimal.Decimal validated through its string form, and the decimal_gt0,
// decimal_gte0 and tax_code tags.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return RegisterValidations(v)
}

// customValidation binds a struct tag to its check
type customValidation struct {
	tag string
	fn  validator.Func
}

var customValidations = []customValidation{
	{"decimal_gt0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	}},
	{"decimal_gte0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	}},
	{"tax_code", func(fl validator.FieldLevel) bool {
		return taxCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	}},
}

// RegisterValidations installs the custom tags on v
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	return register(v, customValidations)
}

func register(v *validator.Validate, validations []customValidation) error {
	for _, cv := range validations {
		if err := v.RegisterValidation(cv.tag, cv.fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", cv.tag, err)
		}
	}
	return nil
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	message := "Request validation failed"
	if len(details) == 0 {
		message = "Malformed request body"
	}
	return dto.NewValidationErrorResponse(message, requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "required_without":
		return "This field is required unless " + e.Param() + " is given"
	case "min":
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " items"
		}
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.Slice {
			return "Must contain at most " + e.Param() + " items"
		}
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "datetime":
		return "Must be a date formatted as " + e.Param()
	case "decimal_gt0":
		return "Must be a decimal amount greater than zero"
	case "decimal_gte0":
		return "Must be a decimal amount of zero or more"
	case "tax_code":
		return "Invalid tax code"
	default:
		return "Invalid value"
	}
}
