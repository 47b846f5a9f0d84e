package extraction

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadImageDownscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, createTestImage(100, 80, gray(30))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := LoadImage(path, 50)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("size = %dx%d, want 50x40", b.Dx(), b.Dy())
	}

	img, err = LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 {
		t.Errorf("unbounded load resized to %d", b.Dx())
	}
}

func TestLoadImageErrors(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"), 0); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode for missing file, got %v", err)
	}
	if _, err := DecodeImage(bytes.NewReader([]byte("not an image")), 0); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode for garbage, got %v", err)
	}
}
