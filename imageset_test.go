package vision

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenRejectsInvalidCollections(t *testing.T) {
	f := newFixtures(t)

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"single image", f.singleImage, "not a directory"},
		{"no label", f.noLabel, "expected only class directories"},
		{"one label", f.oneLabel, "need at least 2"},
		{"missing", filepath.Join(t.TempDir(), "NonLabelledData"), "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Open(tt.path)
			if err == nil {
				t.Fatal("expected error for invalid collection")
			}
			if set != nil {
				t.Error("Open() returned a non-nil set alongside an error")
			}
			if !errors.Is(err, ErrInvalidCollection) {
				t.Errorf("error = %v, want ErrInvalidCollection", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestOpenValid(t *testing.T) {
	f := newFixtures(t)

	set, err := Open(f.valid,
		WithAugmentation(Augmentation{Rescale: 1.0 / 255, HorizontalFlip: true, ZoomRange: 0.4}),
		WithBatchSize(3),
		WithResize(500, 500),
	)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if set.Root() != f.valid {
		t.Errorf("Root() = %q, want %q", set.Root(), f.valid)
	}
	if set.NumClasses() != 2 || set.NumImages() != 4 {
		t.Errorf("counts = (%d, %d), want (2, 4)", set.NumClasses(), set.NumImages())
	}
	if set.BatchSize() != 3 {
		t.Errorf("BatchSize() = %d, want 3", set.BatchSize())
	}
	if set.StepsPerEpoch() != 2 {
		t.Errorf("StepsPerEpoch() = %d, want 2", set.StepsPerEpoch())
	}
	if got := set.ResizeDims().String(); got != "500x500" {
		t.Errorf("ResizeDims() = %s, want 500x500", got)
	}
	if !set.Augmentation().HorizontalFlip {
		t.Error("Augmentation() lost HorizontalFlip")
	}

	files, ok := set.Files("Class2")
	if !ok || len(files) != 2 {
		t.Fatalf("Files(Class2) = %v, %v", files, ok)
	}
	if files[0] != filepath.Join(f.valid, "Class2", "img1.jpg") {
		t.Errorf("Files(Class2)[0] = %q", files[0])
	}
	if classes := set.Classes(); len(classes) != 2 || classes[1].Name != "Class2" || classes[1].Images != 2 {
		t.Errorf("Classes() = %+v", classes)
	}
	if _, ok := set.Files("Class3"); ok {
		t.Error("Files(Class3) ok = true, want false")
	}
}

func TestOpenDefaults(t *testing.T) {
	f := newFixtures(t)

	set, err := Open(f.valid)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if set.BatchSize() != DefaultBatchSize {
		t.Errorf("BatchSize() = %d, want %d", set.BatchSize(), DefaultBatchSize)
	}
	if set.ResizeDims() != DefaultResizeDims {
		t.Errorf("ResizeDims() = %v, want %v", set.ResizeDims(), DefaultResizeDims)
	}
	if set.Augmentation().Scale() != 1 {
		t.Errorf("Scale() = %v, want 1", set.Augmentation().Scale())
	}
}

func TestOpenRejectsBadSettings(t *testing.T) {
	f := newFixtures(t)

	tests := []struct {
		name string
		opt  SetOption
	}{
		{"zero batch", WithBatchSize(0)},
		{"negative resize", WithResize(-1, 10)},
		{"negative rescale", WithAugmentation(Augmentation{Rescale: -1})},
		{"negative zoom", WithAugmentation(Augmentation{ZoomRange: -0.1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(f.valid, tt.opt)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
