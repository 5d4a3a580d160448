package service

import (
	"github.com/templui/storyloom/internal/validation"
)

// validate runs struct tag validation and converts failures into a ValidationError.
func validate(s any) error {
	fields, err := validation.Struct(s)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
