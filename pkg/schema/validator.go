// Package schema turns raw request payloads into validated domain inputs.
// Every invalid field is reported, not only the first one.
package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/variant-reports-service/internal/domain"
)

// Payload is a decoded JSON object
type Payload = map[string]any

// Validator validates gene, variant and report payloads
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new payload validator
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the JSON field names clients send
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(validate, "impact", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseImpact(fl.Field().String())
		return ok
	})

	return &Validator{validate: validate}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// check runs struct-tag validation and merges the failures into errs.
// Fields that already failed type coercion are skipped.
func (v *Validator) check(form interface{}, errs *domain.ValidationErrors) {
	err := v.validate.Struct(form)
	if err == nil {
		return
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("non_field_errors", err.Error())
		return
	}

	for _, fe := range fieldErrs {
		if errs.Has(fe.Field()) {
			continue
		}
		errs.Add(fe.Field(), message(fe))
	}
}

// message renders a validator failure as a client-facing sentence
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "impact":
		return fmt.Sprintf("%q is not a valid choice. Expected one of %s.", fe.Value(), impactChoices())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}

func impactChoices() string {
	names := make([]string, 0, len(domain.Impacts))
	for _, impact := range domain.Impacts {
		names = append(names, impact.String())
	}
	return strings.Join(names, ", ")
}
