package vision

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// writeImage writes a small JPEG to path, creating parent directories.
func writeImage(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	img.Set(3, 3, color.RGBA{R: 200, A: 255})

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
}

// writeFile writes raw bytes to path, creating parent directories.
func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// fixtures holds the collection layouts used across tests.
type fixtures struct {
	// valid has two classes with two images each.
	valid string

	// noLabel has loose images and no class directories.
	noLabel string

	// oneLabel has a single class directory.
	oneLabel string

	// singleImage is a path to one image file.
	singleImage string
}

func newFixtures(t *testing.T) fixtures {
	t.Helper()
	base := t.TempDir()

	f := fixtures{
		valid:       filepath.Join(base, "Valid"),
		noLabel:     filepath.Join(base, "NoLabelData"),
		oneLabel:    filepath.Join(base, "OneLabelData"),
		singleImage: filepath.Join(base, "singleImg.jpg"),
	}

	writeImage(t, filepath.Join(f.valid, "Class1", "img1.jpg"))
	writeImage(t, filepath.Join(f.valid, "Class1", "img2.jpg"))
	writeImage(t, filepath.Join(f.valid, "Class2", "img1.jpg"))
	writeImage(t, filepath.Join(f.valid, "Class2", "img2.jpg"))

	writeImage(t, filepath.Join(f.noLabel, "img1.jpg"))
	writeImage(t, filepath.Join(f.noLabel, "img2.jpg"))

	writeImage(t, filepath.Join(f.oneLabel, "Class1", "img1.jpg"))
	writeImage(t, filepath.Join(f.oneLabel, "Class1", "img2.jpg"))

	writeImage(t, f.singleImage)

	return f
}

// makeCollection builds a collection with the given number of images per class.
func makeCollection(t *testing.T, root string, classes map[string]int) {
	t.Helper()

	for class, n := range classes {
		dir := filepath.Join(root, class)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		for i := 0; i < n; i++ {
			writeImage(t, filepath.Join(dir, imageName(i)))
		}
	}
}

// imageName returns a lexically sortable image file name.
func imageName(i int) string {
	return "img" + string(rune('a'+i/26)) + string(rune('a'+i%26)) + ".jpg"
}
