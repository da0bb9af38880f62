// Package cluster groups photos into events and guards the invariants
// that keep the event records consistent: one event per photo, no
// duplicate ingests, and anchor times that never drift.
package cluster

import (
	"context"
	"errors"
	"time"

	"photomise/internal/store"
	"photomise/internal/textutil"
)

// ErrInvalidSelection indicates an out-of-range keep choice during
// shared-photo resolution. The store is untouched when this is returned.
var ErrInvalidSelection = errors.New("invalid event selection")

// AutoEventName derives an event name from the anchor date and resolved
// location, e.g. "20250614-prospect_park".
func AutoEventName(anchor time.Time, location string) string {
	return anchor.Format("20060102") + "-" + textutil.Sanitize(location)
}

// MatchEvent returns the first stored event the photo belongs to: same
// location and capture time strictly within the window of the event's
// anchor. The anchor is the capture time of the event's first photo and
// is never moved as later photos join, so membership is always judged
// against the original anchor.
func MatchEvent(events []*store.Event, taken time.Time, location string, window time.Duration) *store.Event {
	for _, ev := range events {
		if ev.Location != location {
			continue
		}
		delta := taken.Sub(ev.Date)
		if delta < 0 {
			delta = -delta
		}
		if delta < window {
			return ev
		}
	}
	return nil
}

type eventTimeChecker interface {
	HasEventAt(ctx context.Context, at time.Time) (bool, error)
}

type locationChecker interface {
	HasLocationAt(ctx context.Context, lat, lon float64) (bool, error)
}

// IsDuplicate reports whether a photo with this capture time and these
// coordinates has already been ingested. Both halves must hold: an
// event anchored at exactly this timestamp and a stored location with
// exactly these coordinates. Either alone is not enough; two distinct
// photos can share a timestamp, and many photos share a location.
func IsDuplicate(ctx context.Context, events eventTimeChecker, locations locationChecker, taken time.Time, lat, lon float64) (bool, error) {
	sameTime, err := events.HasEventAt(ctx, taken)
	if err != nil {
		return false, err
	}
	if !sameTime {
		return false, nil
	}
	samePlace, err := locations.HasLocationAt(ctx, lat, lon)
	if err != nil {
		return false, err
	}
	return samePlace, nil
}

type eventPhotoSetter interface {
	SetEventPhotos(ctx context.Context, eventName string, photos []string) error
}

// ResolveSharedPhoto enforces the one-event-per-photo rule. Given the
// events that all reference path and a 1-based keep selection, it
// removes the photo from every other event. An out-of-range selection
// returns ErrInvalidSelection before any mutation, so a bad choice
// leaves every event still holding the photo.
func ResolveSharedPhoto(ctx context.Context, st eventPhotoSetter, events []*store.Event, path string, keep int) error {
	if keep < 1 || keep > len(events) {
		return ErrInvalidSelection
	}
	for i, ev := range events {
		if i == keep-1 {
			continue
		}
		remaining := make([]string, 0, len(ev.Photos))
		for _, p := range ev.Photos {
			if p != path {
				remaining = append(remaining, p)
			}
		}
		if len(remaining) == len(ev.Photos) {
			continue
		}
		if err := st.SetEventPhotos(ctx, ev.Name, remaining); err != nil {
			return err
		}
	}
	return nil
}
