package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Destination is a publish target for exported artifacts (S3, git, etc.).
type Destination interface {
	// Name identifies the destination in logs.
	Name() string
	// Write stores every artifact at the destination.
	Write(ctx context.Context, artifacts []Artifact) error
}

// Publisher fans exported artifacts out to destinations.
type Publisher struct {
	destinations []Destination
	logger       *slog.Logger
}

// NewPublisher creates a publisher for the given destinations.
func NewPublisher(destinations []Destination, logger *slog.Logger) *Publisher {
	return &Publisher{destinations: destinations, logger: logger}
}

// Len returns the number of configured destinations.
func (p *Publisher) Len() int {
	return len(p.destinations)
}

// Publish writes artifacts to every destination. A failing destination does
// not stop the others; all failures are returned joined.
func (p *Publisher) Publish(ctx context.Context, artifacts []Artifact) error {
	var errs []error
	for _, dest := range p.destinations {
		if err := dest.Write(ctx, artifacts); err != nil {
			p.logger.Error("publish failed", "destination", dest.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", dest.Name(), err))
			continue
		}
		p.logger.Info("published artifacts", "destination", dest.Name(), "artifacts", len(artifacts))
	}
	return errors.Join(errs...)
}
