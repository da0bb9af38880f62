package geo_test

import (
	"math"
	"testing"

	"photomise/internal/geo"
	"photomise/internal/store"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Grand Army Plaza to Coney Island boardwalk, roughly 9.6 km.
	d := geo.Haversine(40.6743, -73.9702, 40.5749, -73.9857)
	if d < 9 || d > 11 {
		t.Fatalf("unexpected distance: %f km", d)
	}

	if d := geo.Haversine(40.0, -74.0, 40.0, -74.0); d != 0 {
		t.Fatalf("identical points should be 0 km apart, got %f", d)
	}
}

func TestResolvePicksStrictlyNearest(t *testing.T) {
	idx := geo.NewIndex([]store.Location{
		{Name: "a", Latitude: 40.0, Longitude: -74.0},
		{Name: "b", Latitude: 40.01, Longitude: -74.0},
	}, 0.5)

	loc, ok := idx.Resolve(40.0001, -74.0)
	if !ok {
		t.Fatal("expected a match within threshold")
	}
	if loc.Name != "a" {
		t.Fatalf("expected nearest location a, got %s", loc.Name)
	}
}

func TestResolveRejectsAtThreshold(t *testing.T) {
	// Place a location almost exactly 0.5 km north of the query point.
	idx := geo.NewIndex([]store.Location{
		{Name: "edge", Latitude: 40.0 + 0.5/111.195, Longitude: -74.0},
	}, 0.5)

	if _, ok := idx.Resolve(40.0, -74.0); ok {
		t.Fatal("distance at the threshold must not resolve")
	}

	// Nudge the threshold up and the same point resolves.
	idx = geo.NewIndex([]store.Location{
		{Name: "edge", Latitude: 40.0 + 0.5/111.195, Longitude: -74.0},
	}, 0.51)
	if _, ok := idx.Resolve(40.0, -74.0); !ok {
		t.Fatal("distance under the threshold should resolve")
	}
}

func TestResolveWithNoLocations(t *testing.T) {
	idx := geo.NewIndex(nil, 0.5)
	if _, ok := idx.Resolve(40.0, -74.0); ok {
		t.Fatal("empty index must not resolve")
	}
}

func TestAddMakesLocationResolvable(t *testing.T) {
	idx := geo.NewIndex(nil, 0.5)
	idx.Add(store.Location{Name: "new", Latitude: 40.0, Longitude: -74.0})

	loc, ok := idx.Resolve(40.0001, -74.0001)
	if !ok || loc.Name != "new" {
		t.Fatalf("expected added location to resolve, got %v %v", loc, ok)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	d1 := geo.Haversine(40.6, -74.0, 41.0, -73.5)
	d2 := geo.Haversine(41.0, -73.5, 40.6, -74.0)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", d1, d2)
	}
}
