// Package post selects and prepares an event's photos and publishes
// them to a platform.
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"photomise/internal/bluesky"
	"photomise/internal/imaging"
	"photomise/internal/logging"
	"photomise/internal/store"
	"photomise/internal/textutil"
)

// MaxImages is the Bluesky attachment cap.
const MaxImages = 4

// ErrNoRanking indicates an event holds more photos than the cap and no
// ranking says which to post. Publishing fails closed rather than
// picking arbitrarily.
var ErrNoRanking = errors.New("event exceeds the attachment cap and has no ranking")

// ErrNothingToPost indicates the event has no photos.
var ErrNothingToPost = errors.New("event has no photos")

// Poster is the platform client surface publishing needs.
type Poster interface {
	CreateSession(ctx context.Context, identifier, password string) (*bluesky.Session, error)
	PostPhotos(ctx context.Context, session *bluesky.Session, text string, images []bluesky.Image) (*bluesky.PostResult, error)
}

// SelectPhotos picks which of an event's photos to attach. Events at or
// under the cap post everything in insertion order. Larger events
// require a ranking; the top-ranked photos win, ties broken by ranking
// insertion order.
func SelectPhotos(ctx context.Context, project *store.ProjectStore, ev *store.Event) ([]string, error) {
	if len(ev.Photos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToPost, ev.Name)
	}
	if len(ev.Photos) <= MaxImages {
		return ev.Photos, nil
	}

	rankings, err := project.RankingsByEvent(ctx, ev.Name)
	if err != nil {
		return nil, err
	}

	var selected []string
	for _, r := range rankings {
		if !ev.ContainsPhoto(r.Path) {
			continue
		}
		selected = append(selected, r.Path)
		if len(selected) == MaxImages {
			break
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRanking, ev.Name)
	}
	return selected, nil
}

// ComposeText builds the default post text: the display form of the
// location with the event date, followed by any per-photo flavor text.
func ComposeText(ev *store.Event, photos []*store.Photo, includeFlavor bool) string {
	var b strings.Builder
	b.WriteString(textutil.DisplayTitle(ev.Location))
	b.WriteString(" (")
	b.WriteString(ev.Date.Format("2006-Jan-02"))
	b.WriteString(")")

	if includeFlavor {
		for _, p := range photos {
			if p.Flavor == "" {
				continue
			}
			b.WriteString("\n\n")
			b.WriteString(p.Flavor)
		}
	}
	return b.String()
}

// Request carries everything one publish needs.
type Request struct {
	Event    *store.Event
	Platform string
	Account  string
	Password string
	// Text overrides the composed text when non-empty.
	Text   string
	DryRun bool
}

// Publisher posts an event's photos and records the result. The post
// record is written only after the platform accepts the post, so a
// failed publish leaves no trace and the event stays eligible.
type Publisher struct {
	Project     *store.ProjectStore
	ProjectRoot string
	Client      Poster
	Logger      *slog.Logger

	// Compress is swappable for tests. Defaults to imaging.Compress.
	Compress func(path string, p imaging.Params) (*imaging.Result, error)
}

// Publish selects, processes, and posts the event's photos, then
// appends the post record. On dry runs it stops after processing and
// returns nil.
func (p *Publisher) Publish(ctx context.Context, req Request) (*store.Post, error) {
	if p.Compress == nil {
		p.Compress = imaging.Compress
	}
	log := p.Logger
	if log == nil {
		log = logging.NewNop()
	}

	paths, err := SelectPhotos(ctx, p.Project, req.Event)
	if err != nil {
		return nil, err
	}

	settings, err := p.Project.Settings(ctx)
	if err != nil {
		return nil, err
	}
	includeFlavor := settings != nil && settings.Flavor

	var (
		images  []bluesky.Image
		records []*store.Photo
	)
	for _, path := range paths {
		rec, err := p.Project.Photo(ctx, path)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			defaults := store.Settings{Quality: 80, MaxDimension: 1200}
			if settings != nil {
				defaults = *settings
			}
			fallback := store.DefaultPhoto(path, defaults)
			rec = &fallback
		}
		records = append(records, rec)

		maxDim := 0
		if settings != nil {
			maxDim = settings.MaxDimension
		}
		result, err := p.Compress(filepath.Join(p.ProjectRoot, filepath.FromSlash(path)), imaging.Params{
			Rotation:     rec.Rotation,
			Quality:      rec.Quality,
			MaxDimension: maxDim,
			Brightness:   rec.Brightness,
			Contrast:     rec.Contrast,
			Color:        rec.Color,
			Sharpness:    rec.Sharpness,
		})
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", path, err)
		}
		images = append(images, bluesky.Image{
			Data:   result.Data,
			Alt:    rec.Description,
			Width:  result.Width,
			Height: result.Height,
		})
	}

	text := req.Text
	if text == "" {
		text = ComposeText(req.Event, records, includeFlavor)
	}

	if req.DryRun {
		log.Info("dry run, not posting",
			"event", req.Event.Name,
			"images", len(images),
			"text", text,
		)
		return nil, nil
	}

	session, err := p.Client.CreateSession(ctx, req.Account, req.Password)
	if err != nil {
		return nil, err
	}

	result, err := p.Client.PostPhotos(ctx, session, text, images)
	if err != nil {
		return nil, err
	}

	record := store.Post{
		Event:    req.Event.Name,
		Platform: req.Platform,
		Account:  req.Account,
		Date:     time.Now().UTC(),
		URI:      result.URI,
		Link:     bluesky.WebLink(session.Handle, result.URI),
	}
	if err := p.Project.AddPost(ctx, record); err != nil {
		return nil, fmt.Errorf("record post: %w", err)
	}

	log.Info("posted", "event", req.Event.Name, "uri", record.URI, "link", record.Link)
	return &record, nil
}
