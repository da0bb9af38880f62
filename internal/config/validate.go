package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateClustering(); err != nil {
		return err
	}
	if err := c.validateBluesky(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDefaults() error {
	if c.Defaults.Quality < 1 || c.Defaults.Quality > 100 {
		return errors.New("defaults.quality must be between 1 and 100")
	}
	if c.Defaults.MaxDimension <= 0 {
		return errors.New("defaults.max_dimension must be positive")
	}
	return nil
}

func (c *Config) validateClustering() error {
	if c.Clustering.MaxTimeDeltaHours <= 0 {
		return errors.New("clustering.max_time_delta_hours must be positive")
	}
	if c.Clustering.LocationThresholdKM <= 0 {
		return errors.New("clustering.location_threshold_km must be positive")
	}
	return nil
}

func (c *Config) validateBluesky() error {
	if strings.TrimSpace(c.Bluesky.Host) == "" {
		return errors.New("bluesky.host must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
