// Package config defines the training-input document for spin deep
// potential models together with its loading, validation, and version
// migration, plus the daemon's own service configuration.
//
// The input document is declarative: it is read once, validated, and
// handed to a trainer. This package never mutates a loaded document
// except through explicit version migration.
package config
