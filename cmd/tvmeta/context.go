package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tvmeta/internal/config"
	"tvmeta/internal/logging"
	"tvmeta/internal/resolver"
	"tvmeta/internal/services"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
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

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withEngine opens the store and catalog client for one command and tags the
// command context with a fresh request ID.
func (c *commandContext) withEngine(cmd *cobra.Command, fn func(context.Context, *config.Config, *resolver.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "cli")

	engine, closeStore, err := resolver.Open(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeStore() //nolint:errcheck

	ctx := services.WithRequestID(cmd.Context(), uuid.NewString())
	return fn(ctx, cfg, engine)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
