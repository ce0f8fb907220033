package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain"
)

// FieldError describe un campo que no pasó la validación.
type FieldError struct {
	FailedField string
	Tag         string
	Value       string
}

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

var validate = validator.New()

func init() {
	// sku: código de catálogo (letras, dígitos, guion y guion bajo)
	_ = validate.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
	// decimal.Decimal se valida como float64 (gt=0, lte=...)
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
}

// ValidateStruct devuelve la lista de campos inválidos (vacía si todo es correcto).
func ValidateStruct(data interface{}) []*FieldError {
	var out []*FieldError
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*FieldError{{FailedField: "", Tag: err.Error()}}
	}
	for _, e := range verrs {
		out = append(out, &FieldError{
			FailedField: e.Field(),
			Tag:         e.Tag(),
			Value:       e.Param(),
		})
	}
	return out
}

// Struct valida data y, si falla, devuelve un error que envuelve domain.ErrInvalidInput.
func Struct(data interface{}) error {
	fields := ValidateStruct(data)
	if len(fields) == 0 {
		return nil
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Value != "" {
			parts = append(parts, fmt.Sprintf("%s (%s=%s)", f.FailedField, f.Tag, f.Value))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", f.FailedField, f.Tag))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(parts, ", "))
}
