// Package ingest walks a project's assets and files each photo into an
// event, creating locations and events along the way.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"photomise/internal/cluster"
	"photomise/internal/config"
	"photomise/internal/exifdata"
	"photomise/internal/geo"
	"photomise/internal/logging"
	"photomise/internal/store"
)

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var videoExtensions = map[string]bool{
	".mov": true,
	".mp4": true,
	".m4v": true,
	".avi": true,
}

// Resolver supplies the decisions ingestion cannot make from metadata
// alone. The CLI implements it with interactive prompts; tests script
// the answers. Returning ok=false skips the photo without error.
type Resolver interface {
	// CaptureTime is consulted when a photo carries no EXIF timestamp.
	CaptureTime(path string) (time.Time, bool, error)
	// Coordinates is consulted when a photo carries no GPS data.
	Coordinates(path string) (float64, float64, bool, error)
	// LocationName names a coordinate pair that resolved to no known
	// location. The returned name becomes a shared location.
	LocationName(lat, lon float64) (string, bool, error)
	// EventName confirms or overrides a suggested event name. Not
	// consulted when auto-naming is enabled.
	EventName(suggested string, anchor time.Time, location string) (string, bool, error)
	// KeepEvent picks which event keeps a photo referenced by several,
	// as a 1-based index into events.
	KeepEvent(path string, events []*store.Event) (int, error)
}

// Summary reports what one ingestion run did.
type Summary struct {
	RunID        string
	Photos       int
	Videos       int
	Skipped      int
	Duplicates   int
	NewEvents    int
	NewLocations int
}

// Pipeline wires the stores, configuration, and decision source for one
// ingestion run.
type Pipeline struct {
	Config      *config.Config
	Shared      *store.SharedStore
	Project     *store.ProjectStore
	ProjectRoot string
	Resolver    Resolver
	Logger      *slog.Logger

	// Extract is swappable for tests. Defaults to exifdata.Extract.
	Extract func(path string) (exifdata.Metadata, error)
}

// Run walks assetsDir and processes every non-hidden photo and video.
// Files are visited in sorted path order so runs are reproducible.
func (p *Pipeline) Run(ctx context.Context, assetsDir string) (*Summary, error) {
	if p.Extract == nil {
		p.Extract = exifdata.Extract
	}
	log := p.Logger
	if log == nil {
		log = logging.NewNop()
	}

	summary := &Summary{RunID: uuid.NewString()}
	log = log.With(logging.FieldRunID, summary.RunID)

	settings, err := p.projectSettings(ctx)
	if err != nil {
		return nil, err
	}

	locations, err := p.Shared.Locations(ctx)
	if err != nil {
		return nil, err
	}
	index := geo.NewIndex(locations, p.Config.Clustering.LocationThresholdKM)

	events, err := p.Project.Events(ctx)
	if err != nil {
		return nil, err
	}

	photos, videos, err := collectAssets(assetsDir)
	if err != nil {
		return nil, err
	}

	for _, path := range videos {
		rel, err := p.relative(path)
		if err != nil {
			return nil, err
		}
		if err := p.Project.AddVideo(ctx, rel); err != nil {
			return nil, err
		}
		summary.Videos++
	}

	for _, path := range photos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.processPhoto(ctx, log, path, settings, index, &events, summary); err != nil {
			return nil, fmt.Errorf("process %s: %w", path, err)
		}
	}

	log.Info("ingest complete",
		"photos", summary.Photos,
		"videos", summary.Videos,
		"skipped", summary.Skipped,
		"duplicates", summary.Duplicates,
		"new_events", summary.NewEvents,
		"new_locations", summary.NewLocations,
	)
	return summary, nil
}

func (p *Pipeline) projectSettings(ctx context.Context) (store.Settings, error) {
	settings, err := p.Project.Settings(ctx)
	if err != nil {
		return store.Settings{}, err
	}
	if settings != nil {
		return *settings, nil
	}
	return store.Settings{
		Quality:      p.Config.Defaults.Quality,
		MaxDimension: p.Config.Defaults.MaxDimension,
		AutoEvent:    p.Config.Defaults.AutoEvent,
	}, nil
}

func (p *Pipeline) relative(path string) (string, error) {
	rel, err := filepath.Rel(p.ProjectRoot, path)
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

func (p *Pipeline) processPhoto(ctx context.Context, log *slog.Logger, path string, settings store.Settings, index *geo.Index, events *[]*store.Event, summary *Summary) error {
	rel, err := p.relative(path)
	if err != nil {
		return err
	}
	log = log.With(logging.FieldPhoto, rel)

	// A photo referenced by more than one event blocks all further
	// mutation until the operator picks one.
	holders := eventsHolding(*events, rel)
	if len(holders) > 1 {
		keep, err := p.Resolver.KeepEvent(rel, holders)
		if err != nil {
			return err
		}
		if err := cluster.ResolveSharedPhoto(ctx, p.Project, holders, rel, keep); err != nil {
			if errors.Is(err, cluster.ErrInvalidSelection) {
				log.Warn("invalid event selection, photo left untouched")
				summary.Skipped++
				return nil
			}
			return err
		}
		for i, ev := range holders {
			if i != keep-1 {
				removePhoto(ev, rel)
			}
		}
		holders = holders[keep-1 : keep]
	}

	if err := p.migrateLegacyRecord(ctx, rel, path); err != nil {
		return err
	}

	if len(holders) == 1 {
		// Already filed; nothing to cluster.
		return nil
	}

	meta, err := p.Extract(path)
	if err != nil {
		log.Warn("unreadable photo", "error", err)
		summary.Skipped++
		return nil
	}

	taken, ok, err := p.captureTime(rel, meta)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("no capture time, skipped")
		summary.Skipped++
		return nil
	}

	lat, lon, ok, err := p.coordinates(rel, meta)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("no coordinates, skipped")
		summary.Skipped++
		return nil
	}

	dup, err := cluster.IsDuplicate(ctx, p.Project, p.Shared, taken, lat, lon)
	if err != nil {
		return err
	}
	if dup {
		log.Info("duplicate photo, skipped")
		summary.Duplicates++
		return nil
	}

	locName, ok, err := p.resolveLocation(ctx, index, lat, lon, summary)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("location unnamed, skipped")
		summary.Skipped++
		return nil
	}

	if err := p.fileIntoEvent(ctx, log, rel, taken, lat, lon, locName, settings, events, summary); err != nil {
		return err
	}

	existing, err := p.Project.Photo(ctx, rel)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := p.Project.UpsertPhoto(ctx, store.DefaultPhoto(rel, settings)); err != nil {
			return err
		}
	}

	summary.Photos++
	return nil
}

// migrateLegacyRecord rewrites a photo record stored under an absolute
// path to the project-relative key. Old databases carried absolute
// paths, which broke when a project directory moved.
func (p *Pipeline) migrateLegacyRecord(ctx context.Context, rel, abs string) error {
	rec, legacy, err := p.Project.LookupPhoto(ctx, rel, abs)
	if err != nil {
		return err
	}
	if rec == nil || !legacy {
		return nil
	}
	rec.Path = rel
	return p.Project.MigratePhoto(ctx, abs, *rec)
}

func (p *Pipeline) captureTime(rel string, meta exifdata.Metadata) (time.Time, bool, error) {
	if meta.Taken != nil {
		return *meta.Taken, true, nil
	}
	return p.Resolver.CaptureTime(rel)
}

func (p *Pipeline) coordinates(rel string, meta exifdata.Metadata) (float64, float64, bool, error) {
	if meta.HasGPS {
		return meta.Latitude, meta.Longitude, true, nil
	}
	return p.Resolver.Coordinates(rel)
}

func (p *Pipeline) resolveLocation(ctx context.Context, index *geo.Index, lat, lon float64, summary *Summary) (string, bool, error) {
	if loc, ok := index.Resolve(lat, lon); ok {
		return loc.Name, true, nil
	}

	name, ok, err := p.Resolver.LocationName(lat, lon)
	if err != nil || !ok {
		return "", false, err
	}
	loc := store.Location{Name: name, Latitude: lat, Longitude: lon}
	if err := p.Shared.UpsertLocation(ctx, loc); err != nil {
		return "", false, err
	}
	index.Add(loc)
	summary.NewLocations++
	return name, true, nil
}

func (p *Pipeline) fileIntoEvent(ctx context.Context, log *slog.Logger, rel string, taken time.Time, lat, lon float64, locName string, settings store.Settings, events *[]*store.Event, summary *Summary) error {
	if match := cluster.MatchEvent(*events, taken, locName, p.Config.Window()); match != nil {
		added, err := p.Project.AppendPhotoToEvent(ctx, match.Name, rel)
		if err != nil {
			return err
		}
		if added {
			match.Photos = append(match.Photos, rel)
		}
		log.Info("photo joined event", logging.FieldEvent, match.Name)
		return nil
	}

	name := uniqueEventName(*events, cluster.AutoEventName(taken, locName), taken)
	if !settings.AutoEvent {
		chosen, ok, err := p.Resolver.EventName(name, taken, locName)
		if err != nil {
			return err
		}
		if !ok {
			summary.Skipped++
			return nil
		}
		if existing := eventNamed(*events, chosen); existing != nil {
			// The operator named an event that already exists; join it
			// rather than replace it.
			added, err := p.Project.AppendPhotoToEvent(ctx, existing.Name, rel)
			if err != nil {
				return err
			}
			if added {
				existing.Photos = append(existing.Photos, rel)
			}
			log.Info("photo joined event", logging.FieldEvent, existing.Name)
			return nil
		}
		name = chosen
	}

	ev := store.Event{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Location:  locName,
		Date:      taken,
		Photos:    []string{rel},
	}
	if err := p.Project.InsertEvent(ctx, ev); err != nil {
		return err
	}
	*events = append(*events, &ev)
	summary.NewEvents++
	log.Info("event created", logging.FieldEvent, name, logging.FieldLocation, locName)
	return nil
}

func eventNamed(events []*store.Event, name string) *store.Event {
	for _, ev := range events {
		if ev.Name == name {
			return ev
		}
	}
	return nil
}

// uniqueEventName appends the anchor's clock time when the derived name
// is already held by an event outside the clustering window, so a
// second same-day visit to a location never collides with the first.
func uniqueEventName(events []*store.Event, base string, anchor time.Time) string {
	if eventNamed(events, base) == nil {
		return base
	}
	return base + "-" + anchor.Format("1504")
}

func eventsHolding(events []*store.Event, path string) []*store.Event {
	var holders []*store.Event
	for _, ev := range events {
		if ev.ContainsPhoto(path) {
			holders = append(holders, ev)
		}
	}
	return holders
}

func removePhoto(ev *store.Event, path string) {
	remaining := ev.Photos[:0]
	for _, p := range ev.Photos {
		if p != path {
			remaining = append(remaining, p)
		}
	}
	ev.Photos = remaining
}

// collectAssets returns the photo and video files under dir in sorted
// order, skipping hidden files and directories.
func collectAssets(dir string) (photos, videos []string, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case photoExtensions[ext]:
			photos = append(photos, path)
		case videoExtensions[ext]:
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk assets: %w", err)
	}
	sort.Strings(photos)
	sort.Strings(videos)
	return photos, videos, nil
}
