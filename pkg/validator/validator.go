// Package validator checks request and form structs with go-playground
// tags and reports failures per JSON field name.
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
)

// MinVehicleYear is the oldest model year the vehicle_year rule accepts.
const MinVehicleYear = 1900

var phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-()]{7,15}$`)

// maxVehicleYear allows next year's models.
func maxVehicleYear() int { return time.Now().Year() + 1 }

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("vehicle_year", func(fl validator.FieldLevel) bool {
		y := int(fl.Field().Int())
		return y >= MinVehicleYear && y <= maxVehicleYear()
	})
	return v
}

// jsonName reports a field under its json key, falling back to the Go name.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// ValidationError maps field names to what is wrong with them.
type ValidationError struct {
	fields map[string]string
}

// FieldError reports a single field, for checks no struct tag expresses.
func FieldError(field, message string) *ValidationError {
	return &ValidationError{fields: map[string]string{field: message}}
}

// Validate checks s against its validate tags. Tag failures come back as a
// *ValidationError; a nil or non-struct s is a programming error and is
// returned as is.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &ValidationError{fields: fields}
}

func (e *ValidationError) Error() string {
	names := slices.Sorted(maps.Keys(e.fields))
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("field '%s' %s", name, e.fields[name])
	}
	return strings.Join(parts, "; ")
}

// Fields returns a copy of the per-field messages.
func (e *ValidationError) Fields() map[string]string {
	return maps.Clone(e.fields)
}

// fixedMessages are tags whose message does not depend on the parameter.
var fixedMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"phone":    "must be a valid phone number",
}

func describe(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s%s", fe.Param(), unit)
	case "max":
		return fmt.Sprintf("must be at most %s%s", fe.Param(), unit)
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "vehicle_year":
		return fmt.Sprintf("must be between %d and %d", MinVehicleYear, maxVehicleYear())
	}
	return fmt.Sprintf("failed on '%s' validation", fe.Tag())
}

// Decode reads one JSON document from r into dst. Malformed input is an
// invalid-input error.
func Decode(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}

// DecodeAndValidate decodes r into dst and validates the result.
func DecodeAndValidate(r io.Reader, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}
	return Validate(dst)
}
