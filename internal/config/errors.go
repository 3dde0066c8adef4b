package config

import "errors"

// ErrInvalidConfig marks values that fail Validate; ErrLoadConfig marks a
// .env, YAML or environment layer that could not be read.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
