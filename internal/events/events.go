package events

import (
	"context"
	"time"
)

// Event topic constants
const (
	TopicCaptureExtracted = "followgraph.capture.extracted"
	TopicCaptureSkipped   = "followgraph.capture.skipped"
	TopicGraphExported    = "followgraph.graph.exported"

	// Run lifecycle events, one per pipeline run.
	TopicRunCompleted = "followgraph.run.completed"
	TopicRunFailed    = "followgraph.run.failed"
)

// Event types

type CaptureExtracted struct {
	RunID      string `json:"run_id"`
	Capture    string `json:"capture"`
	Username   string `json:"username"`
	OwnerID    string `json:"owner_id"`
	Followings int    `json:"followings"`
}

type CaptureSkipped struct {
	RunID   string `json:"run_id"`
	Capture string `json:"capture"`
	Reason  string `json:"reason"`
}

type GraphExported struct {
	RunID     string   `json:"run_id"`
	Nodes     int      `json:"nodes"`
	Edges     int      `json:"edges"`
	Artifacts []string `json:"artifacts"`
}

type RunCompleted struct {
	RunID     string        `json:"run_id"`
	Extracted int           `json:"extracted"`
	Skipped   int           `json:"skipped"`
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Duration  time.Duration `json:"duration_ns"`
}

type RunFailed struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
