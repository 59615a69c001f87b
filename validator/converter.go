// Package validator turns ozzo-validation failures into layered errors that
// the HTTP layer can render.
package validator

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/yogan-sessionguard/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidationFailed carries per-field messages under the "fields" data key.
var ErrValidationFailed = errcode.Register(errcode.New(
	errcode.ModuleCommon, 1, "common", "VALIDATION_FAILED", "request validation failed", http.StatusBadRequest,
))

type Validatable interface {
	Validate() error
}

// ValidateRequest runs req.Validate and converts field errors. Other errors
// are returned unchanged.
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return ConvertValidationError(validationErrs)
	}
	return err
}

func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string, len(validationErrs))
	for field, fieldErr := range validationErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return ErrValidationFailed.WithData("fields", fields)
}
