package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alfredjeanlab/followgraph/internal/model"
	"github.com/alfredjeanlab/followgraph/internal/pipeline"
	"github.com/alfredjeanlab/followgraph/internal/ui"
)

// printSummary renders the outcome of a run on w.
func printSummary(w io.Writer, sum *pipeline.Summary, err error) {
	p := ui.NewPalette(ui.ShouldUseColor(os.Stdout))

	if err != nil {
		fields := []ui.Field{{Label: "error", Value: err}}
		if stage := pipeline.FailedStage(err); stage != "" {
			fields = append([]ui.Field{{Label: "stage", Value: stage}}, fields...)
		}
		if errors.Is(err, model.ErrNoInputDocuments) {
			fields = append(fields, ui.Field{Label: "hint", Value: "no capture produced a document; check the log for skipped captures"})
		}
		p.WriteSummary(w, false, "run failed", fields)
		return
	}
	if sum.NoCaptures {
		p.WriteSummary(w, true, "no captures found, nothing to do", nil)
		return
	}

	fields := []ui.Field{{Label: "run", Value: sum.RunID}}
	if sum.Captures > 0 {
		fields = append(fields,
			ui.Field{Label: "captures", Value: sum.Captures},
			ui.Field{Label: "extracted", Value: sum.Extracted},
			ui.Field{Label: "skipped", Value: len(sum.Skipped)},
		)
	}
	if sum.Graph.Nodes > 0 {
		fields = append(fields,
			ui.Field{Label: "nodes", Value: sum.Graph.Nodes},
			ui.Field{Label: "edges", Value: sum.Graph.Edges},
		)
	}
	for _, a := range sum.Artifacts {
		fields = append(fields, ui.Field{Label: "wrote", Value: a})
	}
	fields = append(fields, ui.Field{Label: "took", Value: sum.Duration.Round(time.Millisecond)})
	p.WriteSummary(w, true, "run complete", fields)

	for _, s := range sum.Skipped {
		fmt.Fprintf(w, "  %s %s: %v\n", p.Muted("skipped"), s.Capture, s.Err)
	}
}
