package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"photomise/internal/imaging"
)

func writeTestJPEG(t *testing.T, width, height int, fill color.RGBA) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	path := filepath.Join(t.TempDir(), "test.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func neutralParams() imaging.Params {
	return imaging.Params{
		Quality:    80,
		Brightness: 1.0, Contrast: 1.0, Color: 1.0, Sharpness: 1.0,
	}
}

func TestCompressDownscalesLongestSide(t *testing.T) {
	path := writeTestJPEG(t, 400, 200, color.RGBA{R: 120, G: 140, B: 160, A: 255})

	p := neutralParams()
	p.MaxDimension = 100
	res, err := imaging.Compress(path, p)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if res.Width != 100 || res.Height != 50 {
		t.Fatalf("unexpected dimensions: %dx%d", res.Width, res.Height)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Bounds().Dx() != 100 {
		t.Fatalf("encoded width mismatch: %d", decoded.Bounds().Dx())
	}
}

func TestCompressLeavesSmallImagesAlone(t *testing.T) {
	path := writeTestJPEG(t, 80, 60, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	p := neutralParams()
	p.MaxDimension = 1200
	res, err := imaging.Compress(path, p)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if res.Width != 80 || res.Height != 60 {
		t.Fatalf("image should not grow: %dx%d", res.Width, res.Height)
	}
}

func TestCompressRotationSwapsDimensions(t *testing.T) {
	path := writeTestJPEG(t, 100, 40, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	p := neutralParams()
	p.Rotation = 90
	res, err := imaging.Compress(path, p)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if res.Width != 40 || res.Height != 100 {
		t.Fatalf("rotation should swap dimensions, got %dx%d", res.Width, res.Height)
	}
}

func TestCompressRejectsPartialRotation(t *testing.T) {
	path := writeTestJPEG(t, 10, 10, color.RGBA{A: 255})

	p := neutralParams()
	p.Rotation = 45
	if _, err := imaging.Compress(path, p); err == nil {
		t.Fatal("expected error for non-right-angle rotation")
	}
}

func TestBrightnessZeroFactorBlacksOut(t *testing.T) {
	path := writeTestJPEG(t, 16, 16, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	p := neutralParams()
	p.Brightness = 0.0
	res, err := imaging.Compress(path, p)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	r, g, b, _ := decoded.At(8, 8).RGBA()
	if r>>8 > 10 || g>>8 > 10 || b>>8 > 10 {
		t.Fatalf("zero brightness should be black, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestColorZeroFactorDesaturates(t *testing.T) {
	path := writeTestJPEG(t, 16, 16, color.RGBA{R: 220, G: 40, B: 40, A: 255})

	p := neutralParams()
	p.Color = 0.0
	res, err := imaging.Compress(path, p)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	r, g, b, _ := decoded.At(8, 8).RGBA()
	r8, g8, b8 := int(r>>8), int(g>>8), int(b>>8)
	if abs(r8-g8) > 20 || abs(g8-b8) > 20 {
		t.Fatalf("desaturated pixel should be near gray, got %d %d %d", r8, g8, b8)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
