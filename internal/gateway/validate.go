package gateway

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// constraints holds the range and length rules checked after type decoding.
type constraints struct {
	MeterID           *int64   `json:"meter_id" validate:"omitempty,gt=0"`
	ExternalReference *string  `json:"external_reference" validate:"omitempty,max=32"`
	AnnualQuantity    *float64 `json:"annual_quantity" validate:"omitempty,gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func checkConstraints(errs *ValidationErrors, meterID *int64, externalReference *string, annualQuantity *float64) {
	err := validate.Struct(constraints{
		MeterID:           meterID,
		ExternalReference: externalReference,
		AnnualQuantity:    annualQuantity,
	})
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.add("body", "invalid", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		errs.add(fe.Field(), fe.Tag(), constraintMessage(fe))
	}
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "invalid value"
	}
}
