// Package pipeline runs the batch: extract every capture into a document,
// aggregate the documents into a graph, export the graph as CSV, and publish
// the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/alfredjeanlab/followgraph/internal/capture"
	"github.com/alfredjeanlab/followgraph/internal/events"
	"github.com/alfredjeanlab/followgraph/internal/export"
	"github.com/alfredjeanlab/followgraph/internal/graph"
	"github.com/alfredjeanlab/followgraph/internal/idgen"
	"github.com/alfredjeanlab/followgraph/internal/metrics"
	"github.com/alfredjeanlab/followgraph/internal/model"
	"github.com/alfredjeanlab/followgraph/internal/safeio"
	"github.com/alfredjeanlab/followgraph/internal/store"
)

// CaptureExtractor turns one capture file into a Result.
type CaptureExtractor interface {
	ExtractFile(ctx context.Context, path string) (*capture.Result, error)
}

// Options are the directories and files a pipeline works with.
type Options struct {
	InputDir     string
	DocumentsDir string
	OutputDir    string
	MetricsFile  string // empty = no metrics textfile
}

// Pipeline wires the stages together. It runs one batch at a time.
type Pipeline struct {
	opts       Options
	extractor  CaptureExtractor
	docs       store.DocumentStore
	aggregator *graph.Aggregator
	exporter   *export.Exporter
	publisher  *export.Publisher
	sinks      []store.GraphStore
	events     events.Publisher
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher uploads exported artifacts through pub.
func WithPublisher(pub *export.Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithGraphStores writes every built graph to the given sinks.
func WithGraphStores(sinks ...store.GraphStore) Option {
	return func(p *Pipeline) { p.sinks = append(p.sinks, sinks...) }
}

// WithEvents emits run events through pub.
func WithEvents(pub events.Publisher) Option {
	return func(p *Pipeline) { p.events = pub }
}

// WithMetrics records run metrics in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) { p.metrics = c }
}

// New creates a pipeline. Without options it publishes nowhere, emits no
// events, and keeps metrics in a private collector.
func New(opts Options, extractor CaptureExtractor, docs store.DocumentStore, logger *slog.Logger, setters ...Option) *Pipeline {
	p := &Pipeline{
		opts:       opts,
		extractor:  extractor,
		docs:       docs,
		aggregator: graph.NewAggregator(logger),
		exporter:   export.NewExporter(opts.OutputDir, logger),
		events:     &events.NoopPublisher{},
		metrics:    metrics.NewCollector(),
		logger:     logger,
	}
	for _, set := range setters {
		set(p)
	}
	if p.publisher == nil {
		p.publisher = export.NewPublisher(nil, logger)
	}
	return p
}

// Skipped is a capture that produced no document.
type Skipped struct {
	Capture string
	Err     error
}

// Summary describes one run.
type Summary struct {
	RunID      string
	Captures   int
	Extracted  int
	Skipped    []Skipped
	NoCaptures bool
	Graph      model.GraphStats
	Artifacts  []string
	Duration   time.Duration
}

// Run executes every stage. An empty capture directory is a successful run
// that writes nothing.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	return p.execute(ctx, true, true)
}

// Extract only turns captures into documents.
func (p *Pipeline) Extract(ctx context.Context) (*Summary, error) {
	return p.execute(ctx, true, false)
}

// Build only aggregates existing documents, exports, and publishes.
func (p *Pipeline) Build(ctx context.Context) (*Summary, error) {
	return p.execute(ctx, false, true)
}

// Metrics returns the pipeline's collector.
func (p *Pipeline) Metrics() *metrics.Collector {
	return p.metrics
}

// Close releases the graph stores and the event publisher.
func (p *Pipeline) Close() error {
	var errs []error
	for _, s := range p.sinks {
		errs = append(errs, s.Close())
	}
	errs = append(errs, p.events.Close())
	return errors.Join(errs...)
}

func (p *Pipeline) execute(ctx context.Context, extract, build bool) (*Summary, error) {
	start := time.Now()
	sum := &Summary{}
	runID, err := idgen.NewRunID()
	if err != nil {
		return sum, err
	}
	sum.RunID = runID
	logger := p.logger.With("run_id", runID)

	err = p.stages(ctx, logger, sum, extract, build)
	sum.Duration = time.Since(start)
	p.finish(ctx, logger, sum, err)
	return sum, err
}

func (p *Pipeline) stages(ctx context.Context, logger *slog.Logger, sum *Summary, extract, build bool) error {
	if err := safeio.EnsureDirs(p.opts.InputDir, p.opts.DocumentsDir, p.opts.OutputDir); err != nil {
		return &StageError{Stage: StageBootstrap, Err: err}
	}

	if extract {
		if err := p.extractAll(ctx, logger, sum); err != nil {
			return err
		}
		if sum.NoCaptures {
			return nil
		}
	}
	if !build {
		return nil
	}

	start := time.Now()
	g, err := p.aggregator.Load(ctx, p.docs)
	p.metrics.ObserveStage(string(StageAggregate), start)
	if err != nil {
		return &StageError{Stage: StageAggregate, Err: err}
	}
	sum.Graph = g.Stats()
	p.metrics.GraphBuilt(sum.Graph.Nodes, sum.Graph.Edges)

	start = time.Now()
	artifacts, err := p.exporter.Export(ctx, g)
	p.metrics.ObserveStage(string(StageExport), start)
	if err != nil {
		return &StageError{Stage: StageExport, Err: err}
	}
	for _, a := range artifacts {
		sum.Artifacts = append(sum.Artifacts, filepath.Join(p.opts.OutputDir, a.Name))
	}
	p.emit(ctx, logger, events.TopicGraphExported, events.GraphExported{
		RunID:     sum.RunID,
		Nodes:     sum.Graph.Nodes,
		Edges:     sum.Graph.Edges,
		Artifacts: sum.Artifacts,
	})

	start = time.Now()
	err = p.publish(ctx, g, artifacts)
	p.metrics.ObserveStage(string(StagePublish), start)
	if err != nil {
		return &StageError{Stage: StagePublish, Err: err}
	}
	return nil
}

func (p *Pipeline) extractAll(ctx context.Context, logger *slog.Logger, sum *Summary) error {
	start := time.Now()
	defer p.metrics.ObserveStage(string(StageExtract), start)

	names, err := safeio.ListFiles(p.opts.InputDir, capture.Ext)
	if err != nil {
		return &StageError{Stage: StageExtract, Err: err}
	}
	sum.Captures = len(names)
	if len(names) == 0 {
		logger.Warn("no captures found, nothing to do", "dir", p.opts.InputDir)
		sum.NoCaptures = true
		return nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: StageExtract, Err: err}
		}
		path := filepath.Join(p.opts.InputDir, name)

		res, err := p.extractor.ExtractFile(ctx, path)
		if err != nil {
			p.skip(ctx, logger, sum, name, err)
			continue
		}

		docPath, err := p.docs.SaveDocument(ctx, res.Document())
		if errors.Is(err, model.ErrInvalidUsername) {
			p.skip(ctx, logger, sum, name, err)
			continue
		}
		if err != nil {
			return &StageError{Stage: StageExtract, Err: fmt.Errorf("save document for %s: %w", name, err)}
		}
		sum.Extracted++
		p.metrics.CaptureExtracted(len(res.Followings), res.SkippedBodies)
		logger.Info("capture extracted",
			"capture", name, "username", res.Username, "owner_id", res.OwnerID,
			"followings", len(res.Followings), "document", docPath)
		p.emit(ctx, logger, events.TopicCaptureExtracted, events.CaptureExtracted{
			RunID: sum.RunID, Capture: name, Username: res.Username,
			OwnerID: res.OwnerID, Followings: len(res.Followings),
		})
	}
	return nil
}

func (p *Pipeline) skip(ctx context.Context, logger *slog.Logger, sum *Summary, name string, err error) {
	logger.Warn("skipping capture", "capture", name, "err", err)
	sum.Skipped = append(sum.Skipped, Skipped{Capture: name, Err: err})
	p.metrics.CaptureSkipped()
	p.emit(ctx, logger, events.TopicCaptureSkipped, events.CaptureSkipped{
		RunID: sum.RunID, Capture: name, Reason: err.Error(),
	})
}

// publish sends artifacts to every destination and the graph to every sink.
// All targets are attempted; failures are joined.
func (p *Pipeline) publish(ctx context.Context, g *model.Graph, artifacts []export.Artifact) error {
	var errs []error
	if p.publisher.Len() > 0 {
		if err := p.publisher.Publish(ctx, artifacts); err != nil {
			errs = append(errs, err)
		}
	}
	for _, s := range p.sinks {
		if err := s.SaveGraph(ctx, g); err != nil {
			p.logger.Error("graph store failed", "err", err)
			errs = append(errs, fmt.Errorf("save graph: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, sum *Summary, err error) {
	if p.opts.MetricsFile != "" {
		if werr := p.metrics.WriteTextfile(p.opts.MetricsFile); werr != nil {
			logger.Warn("metrics not written", "err", werr)
		}
	}

	if err != nil {
		logger.Error("run failed", "stage", FailedStage(err), "err", err)
		p.emit(ctx, logger, events.TopicRunFailed, events.RunFailed{
			RunID: sum.RunID, Stage: string(FailedStage(err)), Error: err.Error(),
		})
		return
	}
	logger.Info("run completed",
		"captures", sum.Captures, "extracted", sum.Extracted, "skipped", len(sum.Skipped),
		"nodes", sum.Graph.Nodes, "edges", sum.Graph.Edges, "duration", sum.Duration)
	p.emit(ctx, logger, events.TopicRunCompleted, events.RunCompleted{
		RunID: sum.RunID, Extracted: sum.Extracted, Skipped: len(sum.Skipped),
		Nodes: sum.Graph.Nodes, Edges: sum.Graph.Edges, Duration: sum.Duration,
	})
}

// emit publishes an event. Failures are logged only.
func (p *Pipeline) emit(ctx context.Context, logger *slog.Logger, topic string, event any) {
	if err := p.events.Publish(ctx, topic, event); err != nil {
		logger.Warn("event not published", "topic", topic, "err", err)
	}
}
