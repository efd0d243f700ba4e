package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	vision "github.com/cmaxcy/computer-vision"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid collection", fmt.Errorf("opening: %w", vision.ErrInvalidCollection), ExitInvalidCollection},
		{"not an image", fmt.Errorf("%w: x.txt: %w", vision.ErrInvalidCollection, vision.ErrNotImage), ExitInvalidCollection},
		{"output exists", vision.ErrOutputExists, ExitOutputExists},
		{"run not found", vision.ErrRunNotFound, ExitRunNotFound},
		{"storage", fmt.Errorf("saving ledger: %w", vision.ErrStorageError), ExitStorageError},
		{"invalid argument", vision.ErrInvalidArgument, ExitInvalidArgs},
		{"invalid output", vision.ErrInvalidOutput, ExitInvalidArgs},
		{"interrupted", fmt.Errorf("partitioning: %w", context.Canceled), ExitInterrupted},
		{"other", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFromError(tt.err); got != tt.want {
				t.Errorf("exitCodeFromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	t.Setenv("IMAGESET_DATA_DIR", t.TempDir())

	root := filepath.Join(t.TempDir(), "Images")
	for _, class := range []string{"cat", "dog"} {
		writePNG(t, filepath.Join(root, class, "a.png"))
		writePNG(t, filepath.Join(root, class, "b.png"))
	}
	out := t.TempDir()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"validate", []string{"-q", "validate", root}, ExitSuccess},
		{"missing collection", []string{"-q", "validate", filepath.Join(root, "missing")}, ExitInvalidCollection},
		{"partition", []string{"-q", "partition", root, "1", "--output", out}, ExitSuccess},
		{"partition again", []string{"-q", "partition", root, "1", "--output", out}, ExitOutputExists},
		{"bad count", []string{"-q", "partition", root, "x"}, ExitInvalidArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}
