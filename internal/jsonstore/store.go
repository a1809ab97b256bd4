// Package jsonstore implements the append-only JSON array store that holds
// survey responses. The file on disk is always absent, an empty array, or a
// complete array of every response appended so far.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/mesh-intelligence/survey/pkg/types"
)

// Store is a ResponseStore backed by a single JSON array file.
// Writers are serialized by mu; readers rely on the atomic rename.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ types.ResponseStore = (*Store)(nil)

// New returns a Store for the file at path. Nothing is touched on disk until
// the first Ensure or Append.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Ensure creates the parent directory and writes an empty array if the file
// does not exist. Returns an error wrapping types.ErrStorageUnavailable when
// either step fails.
func (s *Store) Ensure(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked()
}

func (s *Store) ensureLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %w", types.ErrStorageUnavailable, s.path, err)
	}

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %w", types.ErrStorageUnavailable, s.path, err)
	}

	if err := writeArray(s.path, []json.RawMessage{}); err != nil {
		return fmt.Errorf("%w: initialize %s: %w", types.ErrStorageUnavailable, s.path, err)
	}
	return nil
}

// LoadAll reads and parses the whole file. A missing file yields an empty
// slice. Content that is not a JSON array returns an error wrapping
// types.ErrCorruptStore; other read failures wrap types.ErrStorageUnavailable.
func (s *Store) LoadAll(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load()
}

func (s *Store) load() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", types.ErrStorageUnavailable, s.path, err)
	}
	return parseArray(s.path, data)
}

// parseArray decodes data as a JSON array. json.Unmarshal accepts null into
// a slice, so the leading bracket is checked first.
func parseArray(path string, data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", types.ErrCorruptStore, path)
	}
	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: parse %s: invalid JSON", types.ErrCorruptStore, path)
		}
		return nil, fmt.Errorf("%w: %s does not hold a JSON array", types.ErrCorruptStore, path)
	}

	records := []json.RawMessage{}
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", types.ErrCorruptStore, path, err)
	}
	return records, nil
}

// Append adds record to the end of the stored array. The load, append, and
// rename run as one critical section so concurrent callers never lose each
// other's records. No write is attempted if the current file cannot be
// loaded.
func (s *Store) Append(ctx context.Context, record json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(bytes.TrimSpace(record)) == 0 {
		return fmt.Errorf("%w: empty record", types.ErrInvalidInput)
	}
	if !json.Valid(record) {
		return fmt.Errorf("%w: record is not valid JSON", types.ErrInvalidInput)
	}
	// json.Valid lets invalid UTF-8 through inside strings; the file is UTF-8.
	if !utf8.Valid(record) {
		return fmt.Errorf("%w: record is not valid UTF-8", types.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLocked(); err != nil {
		return err
	}
	records, err := s.load()
	if err != nil {
		return err
	}

	// Copy so the caller may reuse its buffer after we return.
	rec := make(json.RawMessage, len(record))
	copy(rec, record)
	records = append(records, rec)

	if err := writeArray(s.path, records); err != nil {
		return fmt.Errorf("%w: write %s: %w", types.ErrStorageUnavailable, s.path, err)
	}
	return nil
}
