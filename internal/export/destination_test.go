package export

import (
	"context"
	"errors"
	"testing"
)

// mockDestination records calls to Write.
type mockDestination struct {
	name   string
	err    error
	writes int
	last   []Artifact
}

func (d *mockDestination) Name() string { return d.name }

func (d *mockDestination) Write(_ context.Context, artifacts []Artifact) error {
	d.writes++
	d.last = artifacts
	return d.err
}

func TestPublisher_AllDestinations(t *testing.T) {
	dest1 := &mockDestination{name: "one"}
	dest2 := &mockDestination{name: "two"}
	p := NewPublisher([]Destination{dest1, dest2}, discardLogger())
	if p.Len() != 2 {
		t.Fatalf("Len = %d", p.Len())
	}

	artifacts := []Artifact{{Name: NodesFile, Data: []byte("Id\n")}}
	if err := p.Publish(context.Background(), artifacts); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	for _, d := range []*mockDestination{dest1, dest2} {
		if d.writes != 1 || len(d.last) != 1 || d.last[0].Name != NodesFile {
			t.Errorf("destination %s: writes=%d last=%+v", d.name, d.writes, d.last)
		}
	}
}

func TestPublisher_FailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("boom")
	failing := &mockDestination{name: "failing", err: boom}
	ok := &mockDestination{name: "ok"}
	p := NewPublisher([]Destination{failing, ok}, discardLogger())

	err := p.Publish(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ok.writes != 1 {
		t.Fatalf("second destination not written after first failed")
	}
}

func TestPublisher_NoDestinations(t *testing.T) {
	if err := NewPublisher(nil, discardLogger()).Publish(context.Background(), nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
