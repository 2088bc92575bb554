package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tracksync/internal/catalog"
	"tracksync/internal/config"
	"tracksync/internal/logging"
	"tracksync/internal/scanner"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *slog.Logger
	logErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logErr = err
			return
		}
		c.log, c.logErr = logging.NewFromConfig(cfg)
	})
	return c.log, c.logErr
}

// openSource opens the local catalog in the configured database directory.
func (c *commandContext) openSource(ctx context.Context) (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Open(ctx, cfg.Paths.DatabaseDir, false)
}

// newScanner wires a scanner against the freshly opened local catalog.
// The caller owns closing the returned store.
func (c *commandContext) newScanner(ctx context.Context) (*scanner.Scanner, *catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openSource(ctx)
	if err != nil {
		return nil, nil, err
	}
	return scanner.New(store, scanner.NewTagReader(), logger, cfg.Scan.Extensions), store, nil
}

// openDestination opens the catalog rooted at the given destination tree.
// The returned path is the expanded tree root used for storage paths.
func (c *commandContext) openDestination(ctx context.Context, dir string) (*catalog.Store, string, error) {
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return nil, "", err
	}
	store, err := catalog.Open(ctx, expanded, true)
	if err != nil {
		return nil, "", err
	}
	return store, expanded, nil
}
