package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alfredjeanlab/followgraph/internal/capture"
	"github.com/alfredjeanlab/followgraph/internal/safeio"
)

// RunFunc receives the outcome of each run started by Watch.
type RunFunc func(*Summary, error)

// Watch runs the pipeline once, then again whenever a capture is created or
// written in the input directory. Changes are debounced; changes seen while a
// run is in progress re-arm the timer. Watch returns when ctx is done.
func (p *Pipeline) Watch(ctx context.Context, debounce time.Duration, onRun RunFunc) error {
	if onRun == nil {
		onRun = func(*Summary, error) {}
	}
	if err := safeio.EnsureDirs(p.opts.InputDir); err != nil {
		return &StageError{Stage: StageBootstrap, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.opts.InputDir); err != nil {
		return fmt.Errorf("watch %s: %w", p.opts.InputDir, err)
	}
	p.logger.Info("watching for captures", "dir", p.opts.InputDir, "debounce", debounce)

	onRun(p.Run(ctx))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != capture.Ext {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				p.logger.Debug("capture changed", "capture", filepath.Base(event.Name), "op", event.Op.String())
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("file watcher error", "err", err)

		case <-timer.C:
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Info("captures changed, running pipeline")
			onRun(p.Run(ctx))
		}
	}
}
