package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"inventory-engine/internal/core"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so errors match what clients sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest checks struct tags and returns the first failure as a *core.ValidationError.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	ve := ves[0]
	return &core.ValidationError{Field: fieldPath(ve), Reason: describe(ve)}
}

// fieldPath drops the struct name from the namespace: "DeliveryRequest.lines[0].quantity" → "lines[0].quantity".
func fieldPath(ve validator.FieldError) string {
	if _, rest, ok := strings.Cut(ve.Namespace(), "."); ok {
		return rest
	}
	return ve.Field()
}

func describe(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + ve.Param()
	case "gte":
		return "must be at least " + ve.Param()
	case "max":
		return "must be at most " + ve.Param() + " characters"
	case "min":
		return "must contain at least " + ve.Param() + " item(s)"
	case "oneof":
		return "must be one of " + ve.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	}
	return "failed " + ve.Tag() + " check"
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty string.
func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
