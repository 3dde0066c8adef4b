package service

import (
	"fmt"

	"github.com/okian/polo/internal/domain/model"
	"github.com/okian/polo/pkg/metrics"
)

// invalid builds a validation error and counts it under reason.
func invalid(reason, format string, args ...any) error {
	metrics.RecordValidationError(reason)
	return fmt.Errorf("%w: %s", model.ErrValidation, fmt.Sprintf(format, args...))
}

// invalidWrap is invalid for errors that carry their own sentinel.
func invalidWrap(reason string, err error) error {
	metrics.RecordValidationError(reason)
	return fmt.Errorf("%w: %w", model.ErrValidation, err)
}
