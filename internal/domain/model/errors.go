package model

import "errors"

// Sentinel kinds for domain errors.
var (
	ErrValidation = errors.New("validation failed")
)
