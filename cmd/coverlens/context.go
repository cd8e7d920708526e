package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/sydlexius/coverlens/internal/analysis"
	"github.com/sydlexius/coverlens/internal/config"
	"github.com/sydlexius/coverlens/internal/covers"
	"github.com/sydlexius/coverlens/internal/logging"
	"github.com/sydlexius/coverlens/internal/shs"
)

var logLevels = []string{"debug", "info", "warn", "error"}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	configPath string
	config     *config.Config
	configErr  error

	servicesOnce sync.Once
	logs         *logging.Manager
	logger       *slog.Logger
	client       *shs.Client
	analysis     *analysis.Service
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		if path == "" {
			path = os.Getenv("CL_CONFIG_PATH")
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if lvl := strings.TrimSpace(*c.logLevelFlag); lvl != "" {
			if !slices.Contains(logLevels, lvl) {
				c.configErr = fmt.Errorf("invalid --log-level %q", lvl)
				return
			}
			cfg.Logging.Level = lvl
		}
		c.configPath = path
		c.config = cfg
	})
	return c.config, c.configErr
}

// services builds the logger and the upstream stack once per invocation.
// Logs go to stderr so stdout carries only command output.
func (c *commandContext) services(stderr io.Writer) (*analysis.Service, *shs.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	c.servicesOnce.Do(func() {
		logCfg := logging.FromConfig(cfg.Logging)
		logCfg.Output = stderr
		c.logs, c.logger = logging.NewManager(logCfg)

		transport := shs.NewHTTPTransport(cfg.API.Timeout(), cfg.API.RequestsPerSecond)
		c.client = shs.New(transport, c.logger, shs.Options{
			BaseURL:   cfg.API.BaseURL,
			APIKey:    cfg.API.APIKey,
			UserAgent: cfg.API.UserAgent,
		})
		resolver := covers.NewResolver(c.client, c.logger, cfg.Resolver.Concurrency)
		c.analysis = analysis.NewService(c.client, resolver, c.logger)
	})
	return c.analysis, c.client, nil
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) close() {
	if c.logs != nil {
		c.logs.Close() //nolint:errcheck
	}
}
