// Package survey provides the public API for the survey response store.
// It exposes the factory for the file-backed store while keeping the
// implementation internal.
package survey

import (
	"github.com/mesh-intelligence/survey/internal/jsonstore"
	"github.com/mesh-intelligence/survey/pkg/types"
)

// Version is the release version reported by the CLI.
const Version = "0.1.0"

// NewStore returns a ResponseStore backed by the JSON array file at path.
// Nothing is created on disk until Ensure or Append is called.
//
// Example:
//
//	store := survey.NewStore("/storage-bucket/responses.json")
//	if err := store.Ensure(ctx); err != nil {
//	    return err
//	}
//	err := store.Append(ctx, json.RawMessage(`{"q1":"yes"}`))
func NewStore(path string) types.ResponseStore {
	return jsonstore.New(path)
}
