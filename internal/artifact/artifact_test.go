package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vectorizer.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := Read("vectorizer", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("unexpected data %q", data)
	}

	if _, err := Read("vectorizer", filepath.Join(dir, "nope.json")); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}

	if _, err := Read("vectorizer", " "); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing for empty path, got %v", err)
	}

	if _, err := Read("vectorizer", dir); err == nil || errors.Is(err, ErrMissing) {
		t.Fatalf("expected a read error that is not ErrMissing, got %v", err)
	}
}
