package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/followgraph/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Extract every capture, build the graph, export and publish it",
	GroupID: "pipeline",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, stages{extract: true, publish: true}, (*pipeline.Pipeline).Run)
	},
}

var extractCmd = &cobra.Command{
	Use:     "extract",
	Short:   "Turn captures into per-account documents only",
	GroupID: "pipeline",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, stages{extract: true}, (*pipeline.Pipeline).Extract)
	},
}

var buildCmd = &cobra.Command{
	Use:     "build",
	Short:   "Build, export and publish the graph from existing documents",
	GroupID: "pipeline",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, stages{publish: true}, (*pipeline.Pipeline).Build)
	},
}

func runStages(cmd *cobra.Command, need stages, fn func(*pipeline.Pipeline, context.Context) (*pipeline.Summary, error)) error {
	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg, logger, need)
	if err != nil {
		return err
	}
	defer p.Close()

	sum, err := fn(p, ctx)
	printSummary(cmd.OutOrStdout(), sum, err)
	return err
}
