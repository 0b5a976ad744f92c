// Package fsutil holds the small filesystem helpers shared by the export paths.
package fsutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const jsonIndent = "    "

// Mkdir creates dir and any missing parents
func Mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// DumpJSON writes a raw JSON document to path, re-indented with four spaces.
// The same input always produces the same bytes.
func DumpJSON(path string, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", jsonIndent); err != nil {
		return fmt.Errorf("invalid JSON for %s: %w", filepath.Base(path), err)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ErrUnsafeName is returned for names that would leave their parent directory
var ErrUnsafeName = errors.New("unsafe path element")

// LocalName checks that name is a single path element that stays inside its
// parent directory
func LocalName(name string) (string, error) {
	if !filepath.IsLocal(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return name, nil
}

// Reset removes dir with everything below it and creates it again empty
func Reset(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear directory %s: %w", dir, err)
	}
	return Mkdir(dir)
}
