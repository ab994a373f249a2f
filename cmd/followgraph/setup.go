package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/followgraph/internal/accounts"
	"github.com/alfredjeanlab/followgraph/internal/capture"
	"github.com/alfredjeanlab/followgraph/internal/config"
	"github.com/alfredjeanlab/followgraph/internal/events"
	"github.com/alfredjeanlab/followgraph/internal/export"
	"github.com/alfredjeanlab/followgraph/internal/pipeline"
	"github.com/alfredjeanlab/followgraph/internal/store/files"
	"github.com/alfredjeanlab/followgraph/internal/store/neo4j"
	"github.com/alfredjeanlab/followgraph/internal/store/postgres"
)

// stages selects which integrations a command needs.
type stages struct {
	extract bool // needs the known accounts directory
	publish bool // needs destinations and graph stores
}

// newPipeline wires a pipeline from cfg. The caller closes it.
func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, need stages) (*pipeline.Pipeline, error) {
	var extractor pipeline.CaptureExtractor
	if need.extract {
		dir := loadAccounts(cfg.AccountsFile, logger)
		extractor = capture.NewExtractor(dir, logger, capture.WithProfileHost(cfg.ProfileHost))
	}

	var opts []pipeline.Option
	if need.publish {
		dests, err := newDestinations(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithPublisher(export.NewPublisher(dests, logger)))

		p, err := newGraphStores(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, p...)
	}
	opts = append(opts, pipeline.WithEvents(newEvents(cfg, logger)))

	return pipeline.New(pipeline.Options{
		InputDir:     cfg.InputDir,
		DocumentsDir: cfg.DocumentsDir,
		OutputDir:    cfg.OutputDir,
		MetricsFile:  cfg.MetricsFile,
	}, extractor, files.New(cfg.DocumentsDir), logger, opts...), nil
}

// loadAccounts reads the known accounts file. An unreadable file yields an
// empty directory, so every capture is skipped with an unknown owner.
func loadAccounts(path string, logger *slog.Logger) *accounts.Directory {
	dir, err := accounts.Load(path)
	if err != nil {
		logger.Warn("known accounts unavailable, owners cannot be resolved", "path", path, "err", err)
		return &accounts.Directory{}
	}
	logger.Info("known accounts loaded", "path", path, "accounts", dir.Len())
	return dir
}

// newEvents connects to NATS when configured. A failed connection only
// disables events.
func newEvents(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.NATS.URL == "" {
		logger.Debug("events disabled (nats.url not set)")
		return &events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATS.URL)
	if err != nil {
		logger.Warn("events disabled", "err", err)
		return &events.NoopPublisher{}
	}
	logger.Info("events enabled", "nats_url", cfg.NATS.URL)
	return pub
}

func newDestinations(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]export.Destination, error) {
	var dests []export.Destination
	if cfg.S3.Bucket != "" {
		d, err := export.NewS3Destination(ctx, cfg.S3.Bucket, cfg.S3.KeyPrefix, cfg.S3.Region, cfg.S3.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("s3 destination: %w", err)
		}
		dests = append(dests, d)
	}
	if cfg.Git.Repo != "" {
		dests = append(dests, export.NewGitDestination(cfg.Git.Repo, cfg.Git.Dir, cfg.Git.Branch))
	}
	for _, d := range dests {
		logger.Info("publish destination enabled", "destination", d.Name())
	}
	return dests, nil
}

func newGraphStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]pipeline.Option, error) {
	var opts []pipeline.Option
	var closers []func() error
	fail := func(err error) ([]pipeline.Option, error) {
		for _, c := range closers {
			c()
		}
		return nil, err
	}

	if cfg.Postgres.URL != "" {
		pg, err := postgres.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("postgres graph store: %w", err))
		}
		closers = append(closers, pg.Close)
		opts = append(opts, pipeline.WithGraphStores(pg))
		logger.Info("graph store enabled", "store", "postgres")
	}
	if cfg.Neo4j.URI != "" {
		n4, err := neo4j.New(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, logger)
		if err != nil {
			return fail(fmt.Errorf("neo4j graph store: %w", err))
		}
		opts = append(opts, pipeline.WithGraphStores(n4))
		logger.Info("graph store enabled", "store", "neo4j", "uri", cfg.Neo4j.URI)
	}
	return opts, nil
}
