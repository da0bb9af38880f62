package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"photomise/internal/config"
)

//go:embed schema_shared.sql
var sharedSchemaSQL string

const sharedSchemaVersion = 1

// SharedStore manages the global store reused across projects:
// named locations and filter presets.
type SharedStore struct {
	db   *sql.DB
	path string
}

// OpenShared initializes or connects to the shared database.
func OpenShared(cfg *config.Config) (*SharedStore, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.SharedDBPath()
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	if err := ensureSchema(context.Background(), db, sharedSchemaSQL, sharedSchemaVersion); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SharedStore{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *SharedStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Locations returns all stored locations in storage (insertion) order.
func (s *SharedStore) Locations(ctx context.Context) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, latitude, longitude FROM locations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.Name, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// Location fetches a location by name. Returns nil when absent.
func (s *SharedStore) Location(ctx context.Context, name string) (*Location, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, latitude, longitude FROM locations WHERE name = ?`, name)
	var loc Location
	if err := row.Scan(&loc.Name, &loc.Latitude, &loc.Longitude); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

// UpsertLocation inserts or updates a location by name.
func (s *SharedStore) UpsertLocation(ctx context.Context, loc Location) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO locations (name, latitude, longitude) VALUES (?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET latitude = excluded.latitude, longitude = excluded.longitude`,
		loc.Name, loc.Latitude, loc.Longitude,
	)
	if err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	return nil
}

// HasLocationAt reports whether a location exists with exactly these
// coordinates. Used by the duplicate detector; exact equality is
// intentional because both sides originate from the same EXIF decode.
func (s *SharedStore) HasLocationAt(ctx context.Context, lat, lon float64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM locations WHERE latitude = ? AND longitude = ?`,
		lat, lon,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check location: %w", err)
	}
	return count > 0, nil
}

// RenameLocation changes a location's key. Fails if the target name is
// already taken.
func (s *SharedStore) RenameLocation(ctx context.Context, oldName, newName string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE locations SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		return fmt.Errorf("rename location: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("location %q not found", oldName)
	}
	return nil
}

// Filters returns all filter presets in storage order.
func (s *SharedStore) Filters(ctx context.Context) ([]Filter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, brightness, contrast, color, sharpness FROM filters ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	var filters []Filter
	for rows.Next() {
		var f Filter
		if err := rows.Scan(&f.Name, &f.Brightness, &f.Contrast, &f.Color, &f.Sharpness); err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// Filter fetches a filter preset by name. Returns nil when absent.
func (s *SharedStore) Filter(ctx context.Context, name string) (*Filter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, brightness, contrast, color, sharpness FROM filters WHERE name = ?`, name)
	var f Filter
	if err := row.Scan(&f.Name, &f.Brightness, &f.Contrast, &f.Color, &f.Sharpness); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get filter: %w", err)
	}
	return &f, nil
}

// UpsertFilter inserts or updates a filter preset by name.
func (s *SharedStore) UpsertFilter(ctx context.Context, f Filter) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO filters (name, brightness, contrast, color, sharpness) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET
             brightness = excluded.brightness, contrast = excluded.contrast,
             color = excluded.color, sharpness = excluded.sharpness`,
		f.Name, f.Brightness, f.Contrast, f.Color, f.Sharpness,
	)
	if err != nil {
		return fmt.Errorf("upsert filter: %w", err)
	}
	return nil
}

// DeleteFilter removes a filter preset by name.
func (s *SharedStore) DeleteFilter(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM filters WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	return nil
}

// FilterMatching returns the name of the first preset whose values equal
// the given enhancement factors, or "" when none match.
func (s *SharedStore) FilterMatching(ctx context.Context, brightness, contrast, color, sharpness float64) (string, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT name FROM filters
         WHERE brightness = ? AND contrast = ? AND color = ? AND sharpness = ?
         ORDER BY rowid LIMIT 1`,
		brightness, contrast, color, sharpness,
	)
	var name string
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("match filter: %w", err)
	}
	return name, nil
}
