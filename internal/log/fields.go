package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldInputID   = "input_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Input document fields
	FieldInputVersion = "input_version"
	FieldOldField     = "old_field"
	FieldNewField     = "new_field"
	FieldSpecies      = "species"
	FieldSystem       = "system"
	FieldStep         = "step"

	// Path fields
	FieldPath = "path"
)
