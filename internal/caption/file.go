package caption

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMalformed marks a subtitle file with blocks that could not be parsed.
var ErrMalformed = errors.New("malformed subtitle")

// ReadFile parses the SRT file at path. When some blocks are malformed the
// readable ones are still returned together with an error wrapping
// ErrMalformed.
func ReadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitle: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return ParseLenient(data), fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	return entries, nil
}

// WriteFile writes entries as SRT to path. The target only appears once it
// is complete.
func WriteFile(path string, entries []Entry) error {
	return WriteAtomic(path, Format(entries))
}

// CopyFile copies src to dst byte for byte through WriteAtomic.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	return WriteAtomic(dst, data)
}

// WriteAtomic writes data to a sibling temp file and renames it over path, so
// readers never observe a truncated target.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return nil
}
