package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/caption-extract/internal/config"
	"github.com/nguyentantai21042004/caption-extract/internal/corrector"
	"github.com/nguyentantai21042004/caption-extract/internal/extractor"
	"github.com/nguyentantai21042004/caption-extract/internal/ledger"
	"github.com/nguyentantai21042004/caption-extract/internal/logger"
	"github.com/nguyentantai21042004/caption-extract/internal/media"
	"github.com/nguyentantai21042004/caption-extract/internal/processor"
	"github.com/nguyentantai21042004/caption-extract/pkg/executor"
)

const defaultConfigPath = "config.yaml"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     logger.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads the configuration once. The default file may be absent;
// a file named with --config must exist.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		var cfg *config.Config
		var err error
		if path == "" {
			cfg, err = config.LoadOrDefault(defaultConfigPath)
		} else {
			cfg, err = config.Load(path)
		}
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger.New(cfg.Logging.Level)
	})
	return c.config, c.configErr
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// pipeline holds the wired components for one command invocation.
type pipeline struct {
	cfg       *config.Config
	log       logger.Logger
	extractor extractor.Extractor
	corrector corrector.Corrector
	ledger    *ledger.Store
}

func (c *commandContext) newPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := ensureDirectories(cfg.Paths.Temp); err != nil {
		return nil, err
	}

	exec := executor.New()
	prober := media.New(exec, c.logger, cfg.Tools.FFmpeg, cfg.Tools.FFprobe, extractor.MediaTimeouts(cfg))
	corr, err := c.newCorrector()
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:       cfg,
		log:       c.logger,
		extractor: extractor.New(exec, prober, extractor.OptionsFromConfig(cfg, exec), c.logger),
		corrector: corr,
	}

	store, err := ledger.Open(cfg.Paths.Ledger)
	if err != nil {
		c.logger.Warn(ctx, "Run history disabled: %v", err)
	} else {
		p.ledger = store
	}
	return p, nil
}

func (p *pipeline) processor() processor.Processor {
	var rec processor.Recorder
	if p.ledger != nil {
		rec = p.ledger
	}
	return processor.New(p.cfg, p.extractor, p.corrector, rec, p.log)
}

func (p *pipeline) Close() {
	if p.ledger != nil {
		_ = p.ledger.Close()
	}
}

// newCorrector builds the corrector from configuration. Gemini revises the
// draft when API keys are configured.
func (c *commandContext) newCorrector() (corrector.Corrector, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	var table *corrector.Table
	if cfg.Corrector.TablePath != "" {
		table, err = corrector.LoadTable(cfg.Corrector.TablePath)
		if err != nil {
			return nil, err
		}
	}

	opts := corrector.Options{
		Table:         table,
		ParagraphSize: cfg.Corrector.ParagraphSize,
		Fillers:       cfg.Corrector.Fillers,
		ReviseTimeout: cfg.Timeouts.Revise,
	}
	if len(cfg.Gemini.APIKeys) > 0 {
		opts.Reviser = corrector.NewGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, table.Values(), c.logger)
	}
	return corrector.New(opts, c.logger), nil
}
