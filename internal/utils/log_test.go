package utils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "python docker",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "resume",
			limit:  10,
			expect: "resume",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "kubernetes operator",
			limit:  10,
			expect: "kubernetes...",
		},
		{
			name:   "counts runes not bytes",
			input:  "résumé text",
			limit:  6,
			expect: "résumé...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestWaitForRespectsContext(t *testing.T) {
	original := sleep
	release := make(chan struct{})
	sleep = func(time.Duration) { <-release }
	defer func() {
		close(release)
		sleep = original
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForSleeps(t *testing.T) {
	original := sleep
	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = original }()

	if err := WaitFor(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 2*time.Second {
		t.Fatalf("expected sleep of 2s, got %s", slept)
	}

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("zero duration must return immediately, got %v", err)
	}
}

func TestReadText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("Jane Doe\nPython"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jane Doe\nPython" {
		t.Fatalf("unexpected content %q", got)
	}

	if !FileExists(path) {
		t.Fatalf("expected file to exist")
	}
	if FileExists(dir) {
		t.Fatalf("directory must not be reported as a file")
	}

	if _, err := ReadText(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
