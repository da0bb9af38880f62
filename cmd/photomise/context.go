package main

import (
	"log/slog"
	"strings"
	"sync"

	"photomise/internal/config"
	"photomise/internal/logging"
	"photomise/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withShared runs fn with an open shared store.
func (c *commandContext) withShared(fn func(*config.Config, *store.SharedStore) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	shared, err := store.OpenShared(cfg)
	if err != nil {
		return err
	}
	defer shared.Close()
	return fn(cfg, shared)
}

// withProject resolves the project name, opens its store, and runs fn.
func (c *commandContext) withProject(name string, fn func(*config.Config, *store.ProjectStore, string) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	root, err := cfg.ProjectPath(name)
	if err != nil {
		return err
	}
	project, err := store.OpenProject(projectKey(name), root)
	if err != nil {
		return err
	}
	defer project.Close()
	return fn(cfg, project, root)
}

// withProjectAndShared opens both stores for commands that span them.
func (c *commandContext) withProjectAndShared(name string, fn func(*config.Config, *store.SharedStore, *store.ProjectStore, string) error) error {
	return c.withShared(func(cfg *config.Config, shared *store.SharedStore) error {
		root, err := cfg.ProjectPath(name)
		if err != nil {
			return err
		}
		project, err := store.OpenProject(projectKey(name), root)
		if err != nil {
			return err
		}
		defer project.Close()
		return fn(cfg, shared, project, root)
	})
}
