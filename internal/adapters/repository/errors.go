package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrDuplicateID = errors.New("duplicate record id")
	ErrInvalidID   = errors.New("invalid record id")
)
