package store

import "time"

// Location is a named coordinate pair in the shared store. Locations are
// created the first time coordinates fail to resolve to an existing name
// and are never deleted automatically.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// Filter is a named enhancement preset in the shared store.
type Filter struct {
	Name       string
	Brightness float64
	Contrast   float64
	Color      float64
	Sharpness  float64
}

// Event groups photos taken at one location within the clustering
// window. Date is the anchor time: the capture time of the first photo
// inserted, never recomputed as later photos join. Photos holds
// project-relative paths in insertion order without duplicates.
type Event struct {
	Name      string
	Latitude  float64
	Longitude float64
	Location  string
	Date      time.Time
	Photos    []string
}

// ContainsPhoto reports whether the event already references the path.
func (e *Event) ContainsPhoto(path string) bool {
	for _, p := range e.Photos {
		if p == path {
			return true
		}
	}
	return false
}

// Photo holds per-photo processing parameters keyed by project-relative
// path. Upserts replace the whole record; there is no field-level merge.
type Photo struct {
	Path        string
	Rotation    int
	Quality     int
	Brightness  float64
	Contrast    float64
	Color       float64
	Sharpness   float64
	Description string
	Flavor      string
}

// DefaultPhoto returns a photo record seeded from project settings.
func DefaultPhoto(path string, settings Settings) Photo {
	return Photo{
		Path:       path,
		Quality:    settings.Quality,
		Brightness: 1.0,
		Contrast:   1.0,
		Color:      1.0,
		Sharpness:  1.0,
	}
}

// Settings is the singleton per-project settings record.
type Settings struct {
	Quality      int
	MaxDimension int
	Description  bool
	Flavor       bool
	AutoEvent    bool
}

// Post records one successful publish action. Rows are append-only and
// never updated; a failed publish writes nothing.
type Post struct {
	ID       int64
	Event    string
	Platform string
	Account  string
	Date     time.Time
	URI      string
	Link     string
}

// Ranking orders a photo within its event for platforms with attachment
// caps. Lower rank sorts first; keyed by path.
type Ranking struct {
	Event string
	Path  string
	Rank  int
}
