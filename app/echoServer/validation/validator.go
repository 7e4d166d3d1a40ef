package validation

import (
	"github.com/go-playground/validator/v10"
)

// Validator adapts validator.Validate to echo.Validator so handlers can call c.Validate.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}

// Engine exposes the shared instance for controllers that validate directly.
func (v *Validator) Engine() *validator.Validate { return v.v }
