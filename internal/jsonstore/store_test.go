package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/survey/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "bucket", "responses.json"))
}

// seed writes raw bytes to the store file, creating its directory.
func seed(t *testing.T, s *Store, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

// overrideRename swaps the rename call for the duration of the test.
func overrideRename(t *testing.T, fn func(oldpath, newpath string) error) {
	t.Helper()
	orig := fileOps.rename
	fileOps.rename = fn
	t.Cleanup(func() { fileOps.rename = orig })
}

// tempFiles lists leftover temp files next to the store file.
func tempFiles(t *testing.T, s *Store) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), ".responses-*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestEnsure(t *testing.T) {
	ctx := context.Background()

	t.Run("creates directory and empty array", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Ensure(ctx))

		data, err := os.ReadFile(s.Path())
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("repeated calls leave exactly one file holding []", func(t *testing.T) {
		s := newTestStore(t)
		for range 5 {
			require.NoError(t, s.Ensure(ctx))
		}

		entries, err := os.ReadDir(filepath.Dir(s.Path()))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "responses.json", entries[0].Name())

		data, err := os.ReadFile(s.Path())
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(data))
	})

	t.Run("leaves existing content alone", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s, `[{"q1":"yes"}]`)
		require.NoError(t, s.Ensure(ctx))

		data, err := os.ReadFile(s.Path())
		require.NoError(t, err)
		assert.Equal(t, `[{"q1":"yes"}]`, string(data))
	})

	t.Run("unusable parent returns ErrStorageUnavailable", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		s := New(filepath.Join(blocker, "responses.json"))
		err := s.Ensure(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	})
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file returns empty slice", func(t *testing.T) {
		s := newTestStore(t)
		records, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)

		_, statErr := os.Stat(s.Path())
		assert.True(t, errors.Is(statErr, os.ErrNotExist), "LoadAll must not create the file")
	})

	t.Run("returns records in file order", func(t *testing.T) {
		s := newTestStore(t)
		seed(t, s, `[{"q1":"yes"}, 2, "three", [4], null]`)
		records, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 5)
		assert.JSONEq(t, `{"q1":"yes"}`, string(records[0]))
		assert.JSONEq(t, `2`, string(records[1]))
		assert.JSONEq(t, `"three"`, string(records[2]))
		assert.JSONEq(t, `[4]`, string(records[3]))
		assert.JSONEq(t, `null`, string(records[4]))
	})

	t.Run("directory in place of file returns ErrStorageUnavailable", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, os.MkdirAll(s.Path(), 0o755))
		_, err := s.LoadAll(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, types.ErrCorruptStore)
	})

	t.Run("cancelled context returns ctx error", func(t *testing.T) {
		s := newTestStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.LoadAll(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoadAllCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not JSON", content: "this is not json"},
		{name: "empty file", content: ""},
		{name: "whitespace only", content: "  \n\t"},
		{name: "null", content: "null"},
		{name: "object", content: `{"q1":"yes"}`},
		{name: "string", content: `"responses"`},
		{name: "truncated array", content: `[{"q1":"yes"},{"q1":`},
		{name: "trailing garbage", content: `[1,2] extra`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			seed(t, s, tt.content)

			records, err := s.LoadAll(context.Background())
			require.Error(t, err)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, types.ErrCorruptStore)
			assert.Contains(t, err.Error(), s.Path())
		})
	}
}

func TestAppendScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Append(ctx, raw(`{"q1": "yes"}`)))
	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"q1":"yes"}`, string(records[0]))

	require.NoError(t, s.Append(ctx, raw(`{"q1": "no"}`)))
	records, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"q1":"yes"}`, string(records[0]))
	assert.JSONEq(t, `{"q1":"no"}`, string(records[1]))
}

func TestAppendIncreasesLengthByOne(t *testing.T) {
	initial := []string{
		``,
		`[]`,
		`[1]`,
		`[{"a":1},{"a":1},"dup","dup"]`,
	}
	records := []string{
		`{"q1":"yes","q2":[1,2,3]}`,
		`"free text"`,
		`42`,
		`[true,false]`,
		`null`,
		`{"q1":"yes"}`,
	}

	for i, init := range initial {
		for j, rec := range records {
			t.Run(fmt.Sprintf("initial_%d_record_%d", i, j), func(t *testing.T) {
				ctx := context.Background()
				s := newTestStore(t)
				if init != "" {
					seed(t, s, init)
				}
				before, err := s.LoadAll(ctx)
				require.NoError(t, err)

				require.NoError(t, s.Append(ctx, raw(rec)))

				after, err := s.LoadAll(ctx)
				require.NoError(t, err)
				require.Len(t, after, len(before)+1)
				for k := range before {
					assert.JSONEq(t, string(before[k]), string(after[k]))
				}
				assert.JSONEq(t, rec, string(after[len(after)-1]))
			})
		}
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s, `["a"]`)

	require.NoError(t, s.Append(ctx, raw(`"r1"`)))
	require.NoError(t, s.Append(ctx, raw(`"r2"`)))

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	got := make([]string, len(records))
	for i, r := range records {
		got[i] = string(r)
	}
	assert.Equal(t, []string{`"a"`, `"r1"`, `"r2"`}, got)
}

func TestAppendRenameFailureLeavesFileUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Append(ctx, raw(`{"q1":"yes"}`)))
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	crash := errors.New("simulated crash before rename")
	var renamed bool
	overrideRename(t, func(oldpath, newpath string) error {
		// The temp file must be complete and on disk at this point.
		data, err := os.ReadFile(oldpath)
		require.NoError(t, err)
		assert.True(t, json.Valid(data), "temp file must hold complete JSON before rename")
		renamed = true
		return crash
	})

	err = s.Append(ctx, raw(`{"q1":"no"}`))
	require.Error(t, err)
	require.True(t, renamed)
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	assert.ErrorIs(t, err, crash)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Empty(t, tempFiles(t, s), "temp file must be removed after failure")

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"q1":"yes"}`, string(records[0]))
}

func TestAppendCreateTempFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Ensure(ctx))

	orig := fileOps.createTemp
	fileOps.createTemp = func(dir, pattern string) (*os.File, error) {
		return nil, os.ErrPermission
	}
	t.Cleanup(func() { fileOps.createTemp = orig })

	err := s.Append(ctx, raw(`{"q1":"yes"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	assert.ErrorIs(t, err, os.ErrPermission)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestAppendCorruptStoreNotModified(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, "{{ definitely not json")

	err := s.Append(context.Background(), raw(`{"q1":"yes"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCorruptStore)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{{ definitely not json", string(data))
	assert.Empty(t, tempFiles(t, s))
}

func TestAppendInvalidRecord(t *testing.T) {
	tests := []struct {
		name   string
		record json.RawMessage
	}{
		{name: "nil", record: nil},
		{name: "empty", record: raw("")},
		{name: "whitespace", record: raw("   ")},
		{name: "malformed", record: raw(`{"q1":`)},
		{name: "two values", record: raw(`1 2`)},
		{name: "invalid UTF-8", record: raw("{\"q1\":\"\xff\xfe\"}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			err := s.Append(context.Background(), tt.record)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidInput)

			_, statErr := os.Stat(s.Path())
			assert.True(t, errors.Is(statErr, os.ErrNotExist), "invalid input must not touch disk")
		})
	}
}

func TestAppendCopiesRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	buf := []byte(`{"q1":"yes"}`)
	require.NoError(t, s.Append(ctx, buf))
	copy(buf, `{"q1":"zzz"}`)

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"q1":"yes"}`, string(records[0]))
}

func TestAppendConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	const writers = 32

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- s.Append(ctx, raw(fmt.Sprintf(`{"writer":%d}`, n)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, writers)

	seen := make(map[int]bool, writers)
	for _, r := range records {
		var v struct {
			Writer int `json:"writer"`
		}
		require.NoError(t, json.Unmarshal(r, &v))
		seen[v.Writer] = true
	}
	assert.Len(t, seen, writers)
}

func TestAppendCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Append(ctx, raw(`{"q1":"yes"}`))
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(s.Path())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestFileFormat(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Append(ctx, raw(`{"q1":"yes","note":"<b>café</b> & more"}`)))
	require.NoError(t, s.Append(ctx, raw(`{"q1":"no"}`)))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "two_responses", data)
}
