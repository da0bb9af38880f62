package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

//go:embed schema_project.sql
var projectSchemaSQL string

const projectSchemaVersion = 1

// ErrLocked indicates another photomise process holds the project store.
var ErrLocked = errors.New("project store is locked by another process")

// ProjectStore manages a single project's database: events, photos,
// videos, settings, posts, accounts, and rankings.
type ProjectStore struct {
	db   *sql.DB
	path string
	name string
	lock *flock.Flock
}

// OpenProject initializes or connects to the database for a project
// rooted at projectPath. The store is guarded by a file lock: the tool
// is single-operator by design, and the lock turns a concurrent second
// invocation into a clean error instead of interleaved writes.
func OpenProject(name, projectPath string) (*ProjectStore, error) {
	dbDir := filepath.Join(projectPath, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	lock := flock.New(filepath.Join(dbDir, name+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, name)
	}

	dbPath := filepath.Join(dbDir, name+".db")
	db, err := openDB(dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	if err := ensureSchema(context.Background(), db, projectSchemaSQL, projectSchemaVersion); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return &ProjectStore{db: db, path: dbPath, name: name, lock: lock}, nil
}

// Close releases the project lock and closes the database connection.
func (s *ProjectStore) Close() error {
	if s == nil {
		return nil
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Name returns the project name the store was opened with.
func (s *ProjectStore) Name() string {
	return s.name
}

// --- events ---

const eventColumns = "name, latitude, longitude, location, date, photos"

func scanEvent(scanner interface{ Scan(dest ...any) error }) (*Event, error) {
	var (
		ev        Event
		date      int64
		photosRaw string
	)
	if err := scanner.Scan(&ev.Name, &ev.Latitude, &ev.Longitude, &ev.Location, &date, &photosRaw); err != nil {
		return nil, err
	}
	ev.Date = time.Unix(date, 0).UTC()
	if err := json.Unmarshal([]byte(photosRaw), &ev.Photos); err != nil {
		return nil, fmt.Errorf("decode photos for event %q: %w", ev.Name, err)
	}
	return &ev, nil
}

func encodePhotos(photos []string) (string, error) {
	if photos == nil {
		photos = []string{}
	}
	data, err := json.Marshal(photos)
	if err != nil {
		return "", fmt.Errorf("encode photos: %w", err)
	}
	return string(data), nil
}

// Events returns all events in storage (insertion) order.
func (s *ProjectStore) Events(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Event fetches an event by name. Returns nil when absent.
func (s *ProjectStore) Event(ctx context.Context, name string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE name = ?`, name)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// UpsertEvent inserts or replaces an event by name.
func (s *ProjectStore) UpsertEvent(ctx context.Context, ev Event) error {
	photos, err := encodePhotos(ev.Photos)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO events (name, latitude, longitude, location, date, photos) VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET
             latitude = excluded.latitude, longitude = excluded.longitude,
             location = excluded.location, date = excluded.date, photos = excluded.photos`,
		ev.Name, ev.Latitude, ev.Longitude, ev.Location, ev.Date.Unix(), photos,
	)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// InsertEvent adds a new event and fails when the name is already
// taken, so an existing event's photo list can never be replaced by
// accident. Callers creating events should prefer this over
// UpsertEvent.
func (s *ProjectStore) InsertEvent(ctx context.Context, ev Event) error {
	photos, err := encodePhotos(ev.Photos)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO events (name, latitude, longitude, location, date, photos) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Name, ev.Latitude, ev.Longitude, ev.Location, ev.Date.Unix(), photos,
	)
	if err != nil {
		return fmt.Errorf("insert event %q: %w", ev.Name, err)
	}
	return nil
}

// AppendPhotoToEvent adds a photo path to an event's ordered photo list.
// Returns false without mutation when the path is already present, which
// makes repeated ingestion runs converge.
func (s *ProjectStore) AppendPhotoToEvent(ctx context.Context, eventName, path string) (bool, error) {
	ev, err := s.Event(ctx, eventName)
	if err != nil {
		return false, err
	}
	if ev == nil {
		return false, fmt.Errorf("event %q not found", eventName)
	}
	if ev.ContainsPhoto(path) {
		return false, nil
	}
	ev.Photos = append(ev.Photos, path)
	return true, s.SetEventPhotos(ctx, eventName, ev.Photos)
}

// SetEventPhotos replaces an event's photo list.
func (s *ProjectStore) SetEventPhotos(ctx context.Context, eventName string, photos []string) error {
	encoded, err := encodePhotos(photos)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE events SET photos = ? WHERE name = ?`, encoded, eventName)
	if err != nil {
		return fmt.Errorf("update event photos: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event %q not found", eventName)
	}
	return nil
}

// EventsWithPhoto returns every event referencing the path, in storage
// order. More than one result is an integrity violation the caller must
// resolve before mutating further.
func (s *ProjectStore) EventsWithPhoto(ctx context.Context, path string) ([]*Event, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*Event
	for _, ev := range events {
		if ev.ContainsPhoto(path) {
			matches = append(matches, ev)
		}
	}
	return matches, nil
}

// EventsWithoutPost returns events that have no post record for the
// given platform, in storage order.
func (s *ProjectStore) EventsWithoutPost(ctx context.Context, platform string) ([]*Event, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+eventColumns+` FROM events
         WHERE name NOT IN (SELECT event FROM posts WHERE platform = ?)
         ORDER BY rowid`,
		platform,
	)
	if err != nil {
		return nil, fmt.Errorf("list unposted events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// HasEventAt reports whether any event's anchor time equals the given
// timestamp exactly. One half of the duplicate-detection conjunction.
func (s *ProjectStore) HasEventAt(ctx context.Context, at time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM events WHERE date = ?`, at.Unix()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check event date: %w", err)
	}
	return count > 0, nil
}

// DeleteEvent removes an event by name. Photo and ranking records are
// left in place; this is a user-invoked operation, not part of ingest.
func (s *ProjectStore) DeleteEvent(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// --- photos ---

const photoColumns = "path, rotation, quality, brightness, contrast, color, sharpness, description, flavor"

func scanPhoto(scanner interface{ Scan(dest ...any) error }) (*Photo, error) {
	var p Photo
	if err := scanner.Scan(
		&p.Path, &p.Rotation, &p.Quality,
		&p.Brightness, &p.Contrast, &p.Color, &p.Sharpness,
		&p.Description, &p.Flavor,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Photo fetches a photo record by path. Returns nil when absent.
func (s *ProjectStore) Photo(ctx context.Context, path string) (*Photo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE path = ?`, path)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return p, nil
}

// LookupPhoto probes for a photo record under the project-relative path
// first and falls back to the legacy absolute path. The second return
// value reports whether the record was found under the legacy key, in
// which case the caller must persist it back through MigratePhoto so the
// store converges on relative keys without duplication.
func (s *ProjectStore) LookupPhoto(ctx context.Context, relPath, absPath string) (*Photo, bool, error) {
	p, err := s.Photo(ctx, relPath)
	if err != nil {
		return nil, false, err
	}
	if p != nil {
		return p, false, nil
	}
	p, err = s.Photo(ctx, absPath)
	if err != nil {
		return nil, false, err
	}
	if p != nil {
		return p, true, nil
	}
	return nil, false, nil
}

// UpsertPhoto inserts or replaces a photo record by path. All fields are
// written; last write wins.
func (s *ProjectStore) UpsertPhoto(ctx context.Context, p Photo) error {
	return upsertPhoto(ctx, s.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertPhoto(ctx context.Context, db execer, p Photo) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO photos (`+photoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             rotation = excluded.rotation, quality = excluded.quality,
             brightness = excluded.brightness, contrast = excluded.contrast,
             color = excluded.color, sharpness = excluded.sharpness,
             description = excluded.description, flavor = excluded.flavor`,
		p.Path, p.Rotation, p.Quality,
		p.Brightness, p.Contrast, p.Color, p.Sharpness,
		p.Description, p.Flavor,
	)
	if err != nil {
		return fmt.Errorf("upsert photo: %w", err)
	}
	return nil
}

// MigratePhoto rewrites a record stored under a legacy path to its new
// key in one transaction. The legacy row is removed, not duplicated.
func (s *ProjectStore) MigratePhoto(ctx context.Context, legacyPath string, p Photo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migrate tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE path = ?`, legacyPath); err != nil {
		return fmt.Errorf("delete legacy photo: %w", err)
	}
	if err := upsertPhoto(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrate: %w", err)
	}
	return nil
}

// RemovePhoto deletes a photo record and its ranking entry.
func (s *ProjectStore) RemovePhoto(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rankings WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete ranking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove: %w", err)
	}
	return nil
}

// --- videos ---

// AddVideo records a video path seen during ingest. Videos are tracked
// but not processed.
func (s *ProjectStore) AddVideo(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO videos (path, added_at) VALUES (?, ?) ON CONFLICT(path) DO NOTHING`,
		path, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("add video: %w", err)
	}
	return nil
}

// Videos returns recorded video paths in storage order.
func (s *ProjectStore) Videos(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM videos ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// --- settings ---

// Settings fetches the project settings singleton. Returns nil when the
// project has never stored settings.
func (s *ProjectStore) Settings(ctx context.Context) (*Settings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT quality, max_dimension, description, flavor, auto_event FROM settings WHERE id = 1`)
	var (
		settings    Settings
		description int
		flavor      int
		autoEvent   int
	)
	if err := row.Scan(&settings.Quality, &settings.MaxDimension, &description, &flavor, &autoEvent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	settings.Description = description != 0
	settings.Flavor = flavor != 0
	settings.AutoEvent = autoEvent != 0
	return &settings, nil
}

// UpsertSettings replaces the settings singleton.
func (s *ProjectStore) UpsertSettings(ctx context.Context, settings Settings) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (id, quality, max_dimension, description, flavor, auto_event) VALUES (1, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             quality = excluded.quality, max_dimension = excluded.max_dimension,
             description = excluded.description, flavor = excluded.flavor,
             auto_event = excluded.auto_event`,
		settings.Quality, settings.MaxDimension,
		boolToInt(settings.Description), boolToInt(settings.Flavor), boolToInt(settings.AutoEvent),
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// --- accounts ---

// Account returns the stored handle for a platform, or "" when unset.
func (s *ProjectStore) Account(ctx context.Context, platform string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user FROM accounts WHERE platform = ?`, platform)
	var user string
	if err := row.Scan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get account: %w", err)
	}
	return user, nil
}

// SetAccount stores the handle for a platform.
func (s *ProjectStore) SetAccount(ctx context.Context, platform, user string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO accounts (platform, user) VALUES (?, ?)
         ON CONFLICT(platform) DO UPDATE SET user = excluded.user`,
		platform, user,
	)
	if err != nil {
		return fmt.Errorf("set account: %w", err)
	}
	return nil
}

// --- posts ---

// AddPost appends a post record. Posts are append-only: one row per
// successful publish, never updated.
func (s *ProjectStore) AddPost(ctx context.Context, post Post) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO posts (event, platform, account, date, uri, link) VALUES (?, ?, ?, ?, ?, ?)`,
		post.Event, post.Platform, post.Account, post.Date.Unix(),
		nullableString(post.URI), nullableString(post.Link),
	)
	if err != nil {
		return fmt.Errorf("add post: %w", err)
	}
	return nil
}

// Posts returns all post records in insertion order.
func (s *ProjectStore) Posts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, event, platform, account, date, uri, link FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var (
			post Post
			date int64
			uri  sql.NullString
			link sql.NullString
		)
		if err := rows.Scan(&post.ID, &post.Event, &post.Platform, &post.Account, &date, &uri, &link); err != nil {
			return nil, err
		}
		post.Date = time.Unix(date, 0).UTC()
		post.URI = uri.String
		post.Link = link.String
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// PostedPlatforms returns the platforms an event has been posted to.
func (s *ProjectStore) PostedPlatforms(ctx context.Context, event string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT platform FROM posts WHERE event = ? ORDER BY platform`, event)
	if err != nil {
		return nil, fmt.Errorf("list posted platforms: %w", err)
	}
	defer rows.Close()

	var platforms []string
	for rows.Next() {
		var platform string
		if err := rows.Scan(&platform); err != nil {
			return nil, err
		}
		platforms = append(platforms, platform)
	}
	return platforms, rows.Err()
}

// --- rankings ---

// UpsertRanking inserts or updates a ranking entry keyed by path.
func (s *ProjectStore) UpsertRanking(ctx context.Context, r Ranking) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO rankings (path, event, rank) VALUES (?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET event = excluded.event, rank = excluded.rank`,
		r.Path, r.Event, r.Rank,
	)
	if err != nil {
		return fmt.Errorf("upsert ranking: %w", err)
	}
	return nil
}

// RankingsByEvent returns an event's ranking entries sorted ascending by
// rank, ties broken by insertion order.
func (s *ProjectStore) RankingsByEvent(ctx context.Context, event string) ([]Ranking, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT path, event, rank FROM rankings WHERE event = ? ORDER BY rank, rowid`,
		event,
	)
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	defer rows.Close()

	var rankings []Ranking
	for rows.Next() {
		var r Ranking
		if err := rows.Scan(&r.Path, &r.Event, &r.Rank); err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

// RankingByPath returns the rank stored for a photo, if any.
func (s *ProjectStore) RankingByPath(ctx context.Context, path string) (int, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT rank FROM rankings WHERE path = ?`, path)
	var rank int
	if err := row.Scan(&rank); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get ranking: %w", err)
	}
	return rank, true, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
