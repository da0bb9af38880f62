// Package geo resolves raw coordinates to named locations.
package geo

import (
	"math"

	"photomise/internal/store"
)

const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// coordinate pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// Index resolves coordinates against a set of named locations.
type Index struct {
	locations   []store.Location
	thresholdKM float64
}

// NewIndex builds an index over the given locations. Resolution matches
// only when the distance is strictly below thresholdKM.
func NewIndex(locations []store.Location, thresholdKM float64) *Index {
	return &Index{locations: locations, thresholdKM: thresholdKM}
}

// Resolve returns the nearest location strictly closer than the
// threshold, or false when no location qualifies. Among qualifying
// locations the closest wins; ties keep the earlier-stored entry.
func (idx *Index) Resolve(lat, lon float64) (store.Location, bool) {
	var (
		best     store.Location
		bestDist = math.Inf(1)
		found    bool
	)
	for _, loc := range idx.locations {
		d := Haversine(lat, lon, loc.Latitude, loc.Longitude)
		if d < idx.thresholdKM && d < bestDist {
			best = loc
			bestDist = d
			found = true
		}
	}
	return best, found
}

// Add makes a newly created location resolvable without rebuilding the
// index.
func (idx *Index) Add(loc store.Location) {
	idx.locations = append(idx.locations, loc)
}
