// Package artifact reads the pre-built files the analysis components are
// initialized from.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrMissing is returned when a required artifact file does not exist.
var ErrMissing = errors.New("artifact missing")

// Read returns the content of the artifact at path. A missing file or an
// empty path yields an error wrapping ErrMissing.
func Read(kind, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%s: path is not configured: %w", kind, ErrMissing)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s %q: %w", kind, path, ErrMissing)
		}
		return nil, fmt.Errorf("reading %s %q: %w", kind, path, err)
	}

	return data, nil
}
