package jsonstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileOps holds the filesystem calls used by writeArray. Tests override
// them to inject failures between the temp write and the rename.
var fileOps = struct {
	createTemp func(dir, pattern string) (*os.File, error)
	rename     func(oldpath, newpath string) error
}{
	createTemp: os.CreateTemp,
	rename:     os.Rename,
}

// tempPattern names temp files so a stray one is recognizable next to
// the store file.
const tempPattern = ".responses-*.tmp"

// encodeArray renders records as an indented JSON array with a trailing
// newline. HTML characters are kept as-is.
func encodeArray(w *bufio.Writer, records []json.RawMessage) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// writeArray atomically replaces path with records using the temp-file,
// fsync, rename pattern. The temp file lives in the same directory as path
// so the rename never crosses filesystems. On failure the temp file is
// removed and path is left untouched.
func writeArray(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := fileOps.createTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := encodeArray(w, records); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing records: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := fileOps.rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	// The rename is already visible; a directory that cannot be synced
	// (some platforms and filesystems refuse) does not undo it.
	_ = syncDir(dir)
	return nil
}

// syncDir fsyncs a directory so a completed rename survives power loss.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
