package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"photomise/internal/textutil"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrProjectNotFound indicates a project name has no registry entry.
var ErrProjectNotFound = errors.New("project not found")

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Defaults contains per-photo processing defaults applied when a project
// has no explicit settings record yet.
type Defaults struct {
	Quality      int  `toml:"quality"`
	MaxDimension int  `toml:"max_dimension"`
	AutoEvent    bool `toml:"auto_event"`
}

// Clustering contains the spatial and temporal thresholds used to group
// photos into events.
type Clustering struct {
	// MaxTimeDeltaHours is the event window: photos at the same location
	// within this many hours of an event's anchor time join that event.
	MaxTimeDeltaHours int `toml:"max_time_delta_hours"`
	// LocationThresholdKM is the great-circle distance under which
	// coordinates resolve to an existing named location.
	LocationThresholdKM float64 `toml:"location_threshold_km"`
}

// Bluesky contains AT Protocol connection settings.
type Bluesky struct {
	Host string `toml:"host"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photomise, including
// the project registry mapping project names to filesystem paths. The
// registry and the shared location/filter store are global; everything
// else a project touches lives under the project's own path.
type Config struct {
	Paths      Paths             `toml:"paths"`
	Defaults   Defaults          `toml:"defaults"`
	Clustering Clustering        `toml:"clustering"`
	Bluesky    Bluesky           `toml:"bluesky"`
	Logging    Logging           `toml:"logging"`
	Projects   map[string]string `toml:"projects"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photomise/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photomise.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	for name, path := range c.Projects {
		expanded, err := expandPath(path)
		if err != nil {
			return err
		}
		c.Projects[name] = expanded
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Bluesky.Host = strings.TrimRight(strings.TrimSpace(c.Bluesky.Host), "/")
	return nil
}

// EnsureDirectories creates the directories the tool needs before any
// store is opened.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SharedDBPath returns the path to the global store holding locations
// and filters reused across projects.
func (c *Config) SharedDBPath() string {
	return filepath.Join(c.Paths.DataDir, "shared.db")
}

// Window returns the event clustering window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Clustering.MaxTimeDeltaHours) * time.Hour
}

// ProjectPath resolves a project name to its registered filesystem path.
// Names are sanitized the same way `init` sanitizes them when writing
// the registry entry.
func (c *Config) ProjectPath(name string) (string, error) {
	key := textutil.Sanitize(name)
	path, ok := c.Projects[key]
	if !ok {
		return "", fmt.Errorf("%w: %q (run 'photomise init %s --path <dir>')", ErrProjectNotFound, name, name)
	}
	return path, nil
}

// SetProject registers or updates a project path under the sanitized
// project name and returns the registry key.
func (c *Config) SetProject(name, path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if c.Projects == nil {
		c.Projects = make(map[string]string, 1)
	}
	key := textutil.Sanitize(name)
	c.Projects[key] = expanded
	return key, nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
