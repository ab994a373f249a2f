package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/followgraph/internal/pipeline"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Run the pipeline, then again whenever captures change",
	GroupID: "pipeline",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := newPipeline(ctx, cfg, logger, stages{extract: true, publish: true})
		if err != nil {
			return err
		}
		defer p.Close()

		debounce := time.Duration(cfg.WatchDebounce)
		if cmd.Flags().Changed("debounce") {
			debounce = watchDebounce
		}
		out := cmd.OutOrStdout()
		return p.Watch(ctx, debounce, func(sum *pipeline.Summary, err error) {
			// A failed run is reported and watching continues.
			printSummary(out, sum, err)
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before re-running")
}
