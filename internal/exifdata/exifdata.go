// Package exifdata extracts the capture metadata ingestion depends on.
package exifdata

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata holds the EXIF fields ingestion cares about. Missing GPS or
// capture time is normal for screenshots and edited exports, so absence
// is carried as data rather than an error.
type Metadata struct {
	Latitude  float64
	Longitude float64
	HasGPS    bool
	Taken     *time.Time
	Width     int
	Height    int
}

// Extract reads EXIF metadata and pixel dimensions from an image file.
// A file with no EXIF block at all still yields dimensions.
func Extract(path string) (Metadata, error) {
	var meta Metadata

	f, err := os.Open(path)
	if err != nil {
		return meta, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	if cfg, _, err := image.DecodeConfig(f); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}

	if _, err := f.Seek(0, 0); err != nil {
		return meta, fmt.Errorf("rewind image: %w", err)
	}

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF block. Dimensions may still be set.
		return meta, nil
	}

	if lat, lon, err := x.LatLong(); err == nil {
		meta.Latitude = lat
		meta.Longitude = lon
		meta.HasGPS = true
	}

	if taken, err := x.DateTime(); err == nil {
		taken = taken.UTC()
		meta.Taken = &taken
	}

	return meta, nil
}
