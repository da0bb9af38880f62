package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"photomise/internal/config"
	"photomise/internal/store"
	"photomise/internal/textutil"
)

func projectKey(name string) string {
	return textutil.Sanitize(name)
}

// effectiveSettings returns the project settings record, falling back to
// configured defaults for projects that never stored one.
func effectiveSettings(ctx context.Context, cfg *config.Config, project *store.ProjectStore) (store.Settings, error) {
	settings, err := project.Settings(ctx)
	if err != nil {
		return store.Settings{}, err
	}
	if settings != nil {
		return *settings, nil
	}
	return store.Settings{
		Quality:      cfg.Defaults.Quality,
		MaxDimension: cfg.Defaults.MaxDimension,
		AutoEvent:    cfg.Defaults.AutoEvent,
	}, nil
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatCoords(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
