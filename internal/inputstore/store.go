// Package inputstore persists validated training inputs so experiments
// can be tracked and re-fetched by ID.
package inputstore

import (
	"context"
	"errors"
	"time"
)

// Record is one registered training input.
type Record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Checksum     string    `json:"checksum"`
	Species      []string  `json:"species"`
	NumbSteps    int       `json:"numb_steps"`
	HasSpin      bool      `json:"has_spin"`
	Document     []byte    `json:"-"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("input not found")

// ErrDuplicate is returned when a document with the same checksum is
// already registered.
var ErrDuplicate = errors.New("input already registered")

// Store persists input records.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Close() error
}
