package types

import (
	"errors"

	appErr "github.com/chartviz/engine/pkg/errors"
)

// FromAppError converts err into the wire error. Wrapped AppErrors keep their code.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if errors.As(err, &e) {
		out := &APIError{Code: string(e.Code), Message: e.Message}
		if e.Err != nil && e.Code != appErr.CodeInternal {
			out.Details = e.Err.Error()
		}
		return out
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}
