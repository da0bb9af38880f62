// Package imaging prepares photos for posting: rotation, downscaling,
// enhancement, and JPEG re-encoding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Params controls how a photo is processed. Enhancement factors range
// from 0.0 to 2.0: 1.0 leaves the image unchanged, values below 1.0
// reduce the quality in question down to the fully degenerate image at
// 0.0 (black, flat gray, grayscale, blurred), and values above 1.0
// boost it. Callers must populate all four factors; photo records
// default them to 1.0.
type Params struct {
	Rotation     int
	Quality      int
	MaxDimension int
	Brightness   float64
	Contrast     float64
	Color        float64
	Sharpness    float64
}

// Result carries the processed JPEG and its final pixel dimensions,
// which posting needs for aspect-ratio hints.
type Result struct {
	Data   []byte
	Width  int
	Height int
}

// Compress loads the photo at path and applies rotation, resize,
// enhancement, and JPEG encoding in that order.
func Compress(path string, p Params) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	img := toRGBA(src)
	if p.Rotation%360 != 0 {
		img, err = rotate(img, p.Rotation)
		if err != nil {
			return nil, err
		}
	}
	if p.MaxDimension > 0 {
		img = downscale(img, p.MaxDimension)
	}

	img = enhance(img, p)

	quality := p.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	bounds := img.Bounds()
	return &Result{Data: buf.Bytes(), Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), src, bounds.Min, xdraw.Src)
	return rgba
}

// rotate turns the image counterclockwise in 90 degree steps.
func rotate(img *image.RGBA, degrees int) (*image.RGBA, error) {
	steps := ((degrees/90)%4 + 4) % 4
	if degrees%90 != 0 {
		return nil, fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", degrees)
	}

	for ; steps > 0; steps-- {
		bounds := img.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		out := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetRGBA(y, w-1-x, img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		img = out
	}
	return img, nil
}

func downscale(img *image.RGBA, maxDim int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longest)
	outW := int(float64(w)*scale + 0.5)
	outH := int(float64(h)*scale + 0.5)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, outW, outH))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, bounds, xdraw.Over, nil)
	return out
}

func enhance(img *image.RGBA, p Params) *image.RGBA {
	if p.Brightness != 1.0 {
		img = blend(img, uniformImage(img, color.RGBA{A: 255}), p.Brightness)
	}
	if p.Contrast != 1.0 {
		img = blend(img, uniformImage(img, meanGray(img)), p.Contrast)
	}
	if p.Color != 1.0 {
		img = blend(img, grayscale(img), p.Color)
	}
	if p.Sharpness != 1.0 {
		img = blend(img, boxBlur(img), p.Sharpness)
	}
	return img
}

// blend interpolates from the degenerate image toward the original.
// factor 0 yields the degenerate, 1 the original; factors above 1
// extrapolate past the original, which is how sharpening and saturation
// boosts work.
func blend(original, degenerate *image.RGBA, factor float64) *image.RGBA {
	bounds := original.Bounds()
	out := image.NewRGBA(bounds)
	for i := 0; i < len(original.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			d := float64(degenerate.Pix[i+c])
			o := float64(original.Pix[i+c])
			out.Pix[i+c] = clampByte(d + (o-d)*factor)
		}
		out.Pix[i+3] = original.Pix[i+3]
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func uniformImage(ref *image.RGBA, c color.RGBA) *image.RGBA {
	out := image.NewRGBA(ref.Bounds())
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = c.R
		out.Pix[i+1] = c.G
		out.Pix[i+2] = c.B
		out.Pix[i+3] = 255
	}
	return out
}

func meanGray(img *image.RGBA) color.RGBA {
	var sum, count uint64
	for i := 0; i < len(img.Pix); i += 4 {
		sum += uint64(luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2]))
		count++
	}
	if count == 0 {
		return color.RGBA{A: 255}
	}
	mean := uint8(sum / count)
	return color.RGBA{R: mean, G: mean, B: mean, A: 255}
}

func grayscale(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		l := luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
		out.Pix[i] = l
		out.Pix[i+1] = l
		out.Pix[i+2] = l
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

func luminance(r, g, b uint8) uint8 {
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
}

// boxBlur applies a 3x3 mean filter, the smoothing counterpart used by
// the sharpness blend.
func boxBlur(img *image.RGBA) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(bounds)
	copy(out.Pix, img.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum [3]uint32
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					i := img.PixOffset(bounds.Min.X+x+dx, bounds.Min.Y+y+dy)
					sum[0] += uint32(img.Pix[i])
					sum[1] += uint32(img.Pix[i+1])
					sum[2] += uint32(img.Pix[i+2])
				}
			}
			i := out.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			out.Pix[i] = uint8(sum[0] / 9)
			out.Pix[i+1] = uint8(sum[1] / 9)
			out.Pix[i+2] = uint8(sum[2] / 9)
		}
	}
	return out
}
