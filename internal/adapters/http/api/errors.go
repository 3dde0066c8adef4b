package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/polo/internal/domain/export"
	"github.com/okian/polo/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBodyTooLarge = errors.New("request body too large")
	ErrInvalidID    = errors.New("invalid record id")
)

// NewKind returns an "op: kind" error.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind returns an "op: kind: cause" error matching both kind and cause.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap prefixes err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// classify maps an error chain to an HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, export.ErrNoRecords), errors.Is(err, export.ErrMissingDate):
		return http.StatusUnprocessableEntity, "export_precondition"
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidID), errors.Is(err, export.ErrUnknownLocale):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal_error"
}
