package config

import "errors"

var (
	// ErrUnknownField classifies strict parse failures caused by unknown keys.
	// Use errors.Is(err, ErrUnknownField) instead of string matching.
	ErrUnknownField = errors.New("unknown input field")

	// ErrMixedVersions is returned when an input carries both the legacy
	// training/systems form and the current training/training_data form.
	ErrMixedVersions = errors.New("both legacy and current training data sections present")

	// ErrUnsupportedFormat is returned for file extensions other than
	// .yaml/.yml/.json.
	ErrUnsupportedFormat = errors.New("unsupported input format")
)
