package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of an input document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath derives the document format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s (want .yaml, .yml or .json)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadInput reads, migrates, defaults, and validates an input document.
// Legacy documents are upgraded to the current version before decoding.
func LoadInput(path string) (Input, error) {
	path = filepath.Clean(path)

	format, err := FormatForPath(path)
	if err != nil {
		return Input{}, err
	}

	// #nosec G304 -- input file paths are provided by the operator via CLI/API
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read file: %w", err)
	}

	return DecodeInput(data, format)
}

// DecodeInput migrates, strictly decodes, defaults, and validates an input
// document held in memory.
func DecodeInput(data []byte, format Format) (Input, error) {
	raw, err := ParseRaw(data, format)
	if err != nil {
		return Input{}, err
	}

	raw, _, err = Update(raw)
	if err != nil {
		return Input{}, fmt.Errorf("migrate input: %w", err)
	}

	// Re-encode the migrated generic document and decode it strictly into
	// the typed schema so unknown keys still surface.
	canonical, err := json.Marshal(raw)
	if err != nil {
		return Input{}, fmt.Errorf("encode migrated input: %w", err)
	}

	var in Input
	dec := json.NewDecoder(bytes.NewReader(canonical))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return Input{}, fmt.Errorf("%w: %v", ErrUnknownField, err)
		}
		return Input{}, fmt.Errorf("strict input parse error: %w", err)
	}

	ApplyDefaults(&in)

	if err := Validate(in); err != nil {
		return Input{}, fmt.Errorf("input validation failed: %w", err)
	}
	return in, nil
}

// ParseRaw parses the document into a generic map, rejecting syntactic
// garbage early. Unknown-field checks happen later against the typed schema.
func ParseRaw(data []byte, format Format) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("input document is empty")
			}
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		// Strict: no multiple documents or trailing content.
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return nil, fmt.Errorf("input file contains multiple documents or trailing content")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("input file contains trailing content")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if raw == nil {
		return nil, fmt.Errorf("input document is empty")
	}
	return raw, nil
}

// RenderInput serializes a document in the given format. YAML output is
// indented with two spaces, JSON with four as upstream tooling emits it.
func RenderInput(in Input, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(in, "", "    ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// RenderRaw serializes a generic document, for tooling that works on
// documents before they pass the typed schema.
func RenderRaw(doc map[string]any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(doc, "", "    ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
