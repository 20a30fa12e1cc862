package api

import "encoding/json"

// FieldError is one validation failure tied to a document field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateResponse is the verdict for a submitted input document. For
// spin models the extended type map lists virtual species after the
// real ones.
type ValidateResponse struct {
	Valid           bool         `json:"valid"`
	Errors          []FieldError `json:"errors,omitempty"`
	Species         []string     `json:"species,omitempty"`
	HasSpin         bool         `json:"has_spin,omitempty"`
	ExtendedTypeMap []string     `json:"extended_type_map,omitempty"`
	Conversions     []string     `json:"conversions,omitempty"`
}

// MigrateResponse carries a migrated document and the conversions applied.
type MigrateResponse struct {
	FromVersion string          `json:"from_version"`
	Conversions []string        `json:"conversions"`
	Document    json.RawMessage `json:"document"`
}

// PreviewRequest asks for a schedule preview of an input document.
type PreviewRequest struct {
	Samples  int             `json:"samples,omitempty"`
	Document json.RawMessage `json:"document"`
}

// RegisterRequest registers a validated input document under a name.
type RegisterRequest struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

// ErrorResponse is the generic error envelope.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
