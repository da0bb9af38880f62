package exifdata_test

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"photomise/internal/exifdata"
)

func writeJPEG(t *testing.T, width, height int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plain.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test image: %v", err)
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return path
}

func TestExtractWithoutExifYieldsDimensionsOnly(t *testing.T) {
	path := writeJPEG(t, 320, 240)

	meta, err := exifdata.Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if meta.Width != 320 || meta.Height != 240 {
		t.Fatalf("unexpected dimensions: %dx%d", meta.Width, meta.Height)
	}
	if meta.HasGPS {
		t.Fatal("plain jpeg must not report GPS")
	}
	if meta.Taken != nil {
		t.Fatalf("plain jpeg must not report capture time, got %v", meta.Taken)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := exifdata.Extract(filepath.Join(t.TempDir(), "absent.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
