// Package metrics records per-run counters and writes them in the Prometheus
// text format for a node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "followgraph"

// Capture outcomes.
const (
	OutcomeExtracted = "extracted"
	OutcomeSkipped   = "skipped"
)

// Collector holds the run metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	Captures            *prometheus.CounterVec
	FollowingsExtracted prometheus.Counter
	BodiesSkipped       prometheus.Counter
	GraphNodes          prometheus.Gauge
	GraphEdges          prometheus.Gauge
	StageDuration       *prometheus.HistogramVec
}

// NewCollector creates and registers the run metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captures_total",
			Help:      "Captures processed, by outcome.",
		}, []string{"outcome"}),
		FollowingsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "followings_extracted_total",
			Help:      "Followings written to documents.",
		}),
		BodiesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bodies_skipped_total",
			Help:      "Response bodies that were not valid JSON.",
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the last built graph.",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the last built graph.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	c.registry.MustRegister(
		c.Captures,
		c.FollowingsExtracted,
		c.BodiesSkipped,
		c.GraphNodes,
		c.GraphEdges,
		c.StageDuration,
	)
	// Pre-create both outcomes so they are exported as zero.
	c.Captures.WithLabelValues(OutcomeExtracted)
	c.Captures.WithLabelValues(OutcomeSkipped)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CaptureExtracted records a successful extraction.
func (c *Collector) CaptureExtracted(followings, skippedBodies int) {
	c.Captures.WithLabelValues(OutcomeExtracted).Inc()
	c.FollowingsExtracted.Add(float64(followings))
	c.BodiesSkipped.Add(float64(skippedBodies))
}

// CaptureSkipped records a capture that produced no document.
func (c *Collector) CaptureSkipped() {
	c.Captures.WithLabelValues(OutcomeSkipped).Inc()
}

// GraphBuilt records the size of the aggregated graph.
func (c *Collector) GraphBuilt(nodes, edges int) {
	c.GraphNodes.Set(float64(nodes))
	c.GraphEdges.Set(float64(edges))
}

// ObserveStage records how long a stage took since start.
func (c *Collector) ObserveStage(stage string, start time.Time) {
	c.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes all metrics to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
