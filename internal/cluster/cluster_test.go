package cluster_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"photomise/internal/cluster"
	"photomise/internal/store"
	"photomise/internal/testsupport"
)

const window = 8 * time.Hour

func TestMatchEventWithinWindowSameLocation(t *testing.T) {
	anchor := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)
	events := []*store.Event{
		{Name: "20250614-prospect_park", Location: "prospect_park", Date: anchor},
	}

	if ev := cluster.MatchEvent(events, anchor.Add(6*time.Hour), "prospect_park", window); ev == nil {
		t.Fatal("6h apart at the same location should join the event")
	}
	if ev := cluster.MatchEvent(events, anchor.Add(-6*time.Hour), "prospect_park", window); ev == nil {
		t.Fatal("window applies in both directions")
	}
	if ev := cluster.MatchEvent(events, anchor.Add(10*time.Hour), "prospect_park", window); ev != nil {
		t.Fatal("10h apart should start a new event")
	}
	if ev := cluster.MatchEvent(events, anchor.Add(time.Hour), "coney_island", window); ev != nil {
		t.Fatal("a different location should never match")
	}
}

func TestMatchEventWindowIsExclusive(t *testing.T) {
	anchor := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)
	events := []*store.Event{{Name: "evt", Location: "pier", Date: anchor}}

	if ev := cluster.MatchEvent(events, anchor.Add(window), "pier", window); ev != nil {
		t.Fatal("exactly the window apart must not match")
	}
	if ev := cluster.MatchEvent(events, anchor.Add(window-time.Second), "pier", window); ev == nil {
		t.Fatal("one second inside the window should match")
	}
}

func TestMatchEventJudgesAgainstAnchorNotLatest(t *testing.T) {
	// The anchor stays at the first photo's capture time. A photo 7h
	// after the anchor joins; a photo 9h after does not, even though it
	// is only 2h after the last photo that joined.
	anchor := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)
	ev := &store.Event{Name: "evt", Location: "pier", Date: anchor, Photos: []string{"a.jpg"}}
	events := []*store.Event{ev}

	if got := cluster.MatchEvent(events, anchor.Add(7*time.Hour), "pier", window); got == nil {
		t.Fatal("7h after anchor should join")
	}
	ev.Photos = append(ev.Photos, "b.jpg")

	if got := cluster.MatchEvent(events, anchor.Add(9*time.Hour), "pier", window); got != nil {
		t.Fatal("9h after anchor must not join regardless of later photos")
	}
}

func TestAutoEventName(t *testing.T) {
	anchor := time.Date(2025, 6, 14, 22, 15, 0, 0, time.UTC)
	got := cluster.AutoEventName(anchor, "Prospect Park")
	if got != "20250614-prospect_park" {
		t.Fatalf("unexpected auto event name: %q", got)
	}
}

func TestIsDuplicateRequiresBothHalves(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	shared := testsupport.MustOpenShared(t, cfg)
	project := testsupport.MustOpenProject(t, "brooklyn")
	ctx := context.Background()

	taken := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)
	if err := project.UpsertEvent(ctx, store.Event{Name: "evt", Location: "pier", Date: taken}); err != nil {
		t.Fatalf("upsert event: %v", err)
	}

	// Timestamp matches, coordinates unknown: not a duplicate.
	dup, err := cluster.IsDuplicate(ctx, project, shared, taken, 40.0, -74.0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if dup {
		t.Fatal("timestamp alone must not flag a duplicate")
	}

	if err := shared.UpsertLocation(ctx, store.Location{Name: "pier", Latitude: 40.0, Longitude: -74.0}); err != nil {
		t.Fatalf("upsert location: %v", err)
	}

	// Coordinates match, timestamp off by a second: not a duplicate.
	dup, err = cluster.IsDuplicate(ctx, project, shared, taken.Add(time.Second), 40.0, -74.0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if dup {
		t.Fatal("coordinates alone must not flag a duplicate")
	}

	// Both halves hold.
	dup, err = cluster.IsDuplicate(ctx, project, shared, taken, 40.0, -74.0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !dup {
		t.Fatal("matching timestamp and coordinates should flag a duplicate")
	}
}

func TestResolveSharedPhotoKeepsSelection(t *testing.T) {
	project := testsupport.MustOpenProject(t, "brooklyn")
	ctx := context.Background()

	seed := []*store.Event{
		{Name: "first", Location: "a", Date: time.Unix(100, 0), Photos: []string{"assets/x.jpg", "assets/only-first.jpg"}},
		{Name: "second", Location: "b", Date: time.Unix(200, 0), Photos: []string{"assets/x.jpg"}},
		{Name: "third", Location: "c", Date: time.Unix(300, 0), Photos: []string{"assets/x.jpg"}},
	}
	for _, ev := range seed {
		if err := project.UpsertEvent(ctx, *ev); err != nil {
			t.Fatalf("upsert %s: %v", ev.Name, err)
		}
	}

	if err := cluster.ResolveSharedPhoto(ctx, project, seed, "assets/x.jpg", 2); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for name, want := range map[string][]string{
		"first":  {"assets/only-first.jpg"},
		"second": {"assets/x.jpg"},
		"third":  {},
	} {
		ev, err := project.Event(ctx, name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if len(ev.Photos) != len(want) {
			t.Fatalf("%s: got photos %v, want %v", name, ev.Photos, want)
		}
		for i := range want {
			if ev.Photos[i] != want[i] {
				t.Fatalf("%s: got photos %v, want %v", name, ev.Photos, want)
			}
		}
	}
}

func TestResolveSharedPhotoOutOfRangeIsNoOp(t *testing.T) {
	project := testsupport.MustOpenProject(t, "brooklyn")
	ctx := context.Background()

	seed := []*store.Event{
		{Name: "first", Location: "a", Date: time.Unix(100, 0), Photos: []string{"assets/x.jpg"}},
		{Name: "second", Location: "b", Date: time.Unix(200, 0), Photos: []string{"assets/x.jpg"}},
	}
	for _, ev := range seed {
		if err := project.UpsertEvent(ctx, *ev); err != nil {
			t.Fatalf("upsert %s: %v", ev.Name, err)
		}
	}

	for _, keep := range []int{0, 3, -1} {
		err := cluster.ResolveSharedPhoto(ctx, project, seed, "assets/x.jpg", keep)
		if !errors.Is(err, cluster.ErrInvalidSelection) {
			t.Fatalf("keep=%d: expected ErrInvalidSelection, got %v", keep, err)
		}
	}

	// Every event still holds the photo.
	for _, name := range []string{"first", "second"} {
		ev, err := project.Event(ctx, name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if !ev.ContainsPhoto("assets/x.jpg") {
			t.Fatalf("%s lost the photo after an invalid selection", name)
		}
	}
}
