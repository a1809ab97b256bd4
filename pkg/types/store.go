package types

import (
	"context"
	"encoding/json"
	"errors"
)

// ResponseStore persists survey responses as one JSON array.
// Records are opaque JSON values; the store never inspects their shape.
type ResponseStore interface {
	// Ensure creates the parent directory and an empty array file if the
	// file is absent. Idempotent.
	Ensure(ctx context.Context) error

	// LoadAll returns every stored record in insertion order. A missing file
	// yields an empty slice.
	LoadAll(ctx context.Context) ([]json.RawMessage, error)

	// Append adds record at the end of the array. On success the file holds
	// the previous records followed by record; on failure it is unchanged.
	Append(ctx context.Context, record json.RawMessage) error
}

// Store error kinds. Errors returned by a ResponseStore wrap exactly one of
// these together with the underlying cause.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrCorruptStore       = errors.New("corrupt store")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
