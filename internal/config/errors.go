package config

import "errors"

// Configuration failures. Callers match them with errors.Is.
var (
	ErrInvalidConfig = errors.New("config: invalid value")
	ErrLoadConfig    = errors.New("config: cannot read source")
)
