package store_test

import (
	"context"
	"testing"

	"photomise/internal/store"
	"photomise/internal/testsupport"
)

func TestLocationRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenShared(t, cfg)
	ctx := context.Background()

	if loc, err := s.Location(ctx, "prospect_park"); err != nil || loc != nil {
		t.Fatalf("expected nil for absent location, got %+v, err %v", loc, err)
	}

	want := store.Location{Name: "prospect_park", Latitude: 40.6602, Longitude: -73.969}
	if err := s.UpsertLocation(ctx, want); err != nil {
		t.Fatalf("upsert location: %v", err)
	}

	got, err := s.Location(ctx, "prospect_park")
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("location mismatch: got %+v, want %+v", got, want)
	}
}

func TestUpsertLocationIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenShared(t, cfg)
	ctx := context.Background()

	loc := store.Location{Name: "coney_island", Latitude: 40.5749, Longitude: -73.9857}
	for i := 0; i < 3; i++ {
		if err := s.UpsertLocation(ctx, loc); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	locations, err := s.Locations(ctx)
	if err != nil {
		t.Fatalf("list locations: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected 1 location after repeated upserts, got %d", len(locations))
	}
}

func TestHasLocationAtRequiresExactCoordinates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenShared(t, cfg)
	ctx := context.Background()

	if err := s.UpsertLocation(ctx, store.Location{Name: "pier", Latitude: 40.0, Longitude: -74.0}); err != nil {
		t.Fatalf("upsert location: %v", err)
	}

	exact, err := s.HasLocationAt(ctx, 40.0, -74.0)
	if err != nil {
		t.Fatalf("check exact: %v", err)
	}
	if !exact {
		t.Fatal("expected exact coordinates to match")
	}

	near, err := s.HasLocationAt(ctx, 40.0000001, -74.0)
	if err != nil {
		t.Fatalf("check near: %v", err)
	}
	if near {
		t.Fatal("nearby coordinates must not count as a stored location")
	}
}

func TestRenameLocation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenShared(t, cfg)
	ctx := context.Background()

	if err := s.UpsertLocation(ctx, store.Location{Name: "old_name", Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("upsert location: %v", err)
	}
	if err := s.RenameLocation(ctx, "old_name", "new_name"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if loc, err := s.Location(ctx, "old_name"); err != nil || loc != nil {
		t.Fatalf("old name should be gone, got %+v, err %v", loc, err)
	}
	loc, err := s.Location(ctx, "new_name")
	if err != nil || loc == nil {
		t.Fatalf("new name should exist, got %+v, err %v", loc, err)
	}
	if loc.Latitude != 1 || loc.Longitude != 2 {
		t.Fatalf("coordinates lost in rename: %+v", loc)
	}

	if err := s.RenameLocation(ctx, "missing", "whatever"); err == nil {
		t.Fatal("renaming an absent location should fail")
	}
}

func TestFilterLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenShared(t, cfg)
	ctx := context.Background()

	f := store.Filter{Name: "warm", Brightness: 1.1, Contrast: 1.0, Color: 1.2, Sharpness: 1.0}
	if err := s.UpsertFilter(ctx, f); err != nil {
		t.Fatalf("upsert filter: %v", err)
	}

	got, err := s.Filter(ctx, "warm")
	if err != nil {
		t.Fatalf("get filter: %v", err)
	}
	if got == nil || *got != f {
		t.Fatalf("filter mismatch: got %+v, want %+v", got, f)
	}

	name, err := s.FilterMatching(ctx, 1.1, 1.0, 1.2, 1.0)
	if err != nil {
		t.Fatalf("match filter: %v", err)
	}
	if name != "warm" {
		t.Fatalf("expected matching filter %q, got %q", "warm", name)
	}

	name, err = s.FilterMatching(ctx, 0.9, 1.0, 1.0, 1.0)
	if err != nil {
		t.Fatalf("match filter: %v", err)
	}
	if name != "" {
		t.Fatalf("expected no match, got %q", name)
	}

	if err := s.DeleteFilter(ctx, "warm"); err != nil {
		t.Fatalf("delete filter: %v", err)
	}
	if got, err := s.Filter(ctx, "warm"); err != nil || got != nil {
		t.Fatalf("filter should be deleted, got %+v, err %v", got, err)
	}
}

func TestSharedStoreSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	s, err := store.OpenShared(cfg)
	if err != nil {
		t.Fatalf("open shared store: %v", err)
	}
	if err := s.UpsertLocation(ctx, store.Location{Name: "dumbo", Latitude: 40.7033, Longitude: -73.9881}); err != nil {
		t.Fatalf("upsert location: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := testsupport.MustOpenShared(t, cfg)
	loc, err := reopened.Location(ctx, "dumbo")
	if err != nil {
		t.Fatalf("get location after reopen: %v", err)
	}
	if loc == nil {
		t.Fatal("location lost across reopen")
	}
}
