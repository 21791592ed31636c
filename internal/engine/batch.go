package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/autocam/internal/system"
)

// EventsFileName is the file Batch looks for under its root.
const EventsFileName = "events.json"

// ProjectFileName is the project Batch writes next to each events file.
const ProjectFileName = "project.yaml"

// BatchResult is the outcome of one recording in a batch.
type BatchResult struct {
	EventsPath string
	Result     *SegmentsResult
	Err        error
}

// FindRecordings lists every events file under root.
func FindRecordings(root string) ([]string, error) {
	paths, err := system.FindAll(root, EventsFileName)
	if err != nil {
		return nil, fmt.Errorf("find recordings in %s: %w", root, err)
	}
	return paths, nil
}

// Batch directs every recording with at most workers running at once. Each
// project is written next to its events file. Failures are reported per
// recording and do not stop the others; results keep the input order.
func (p *Pipeline) Batch(ctx context.Context, eventsPaths []string, workers int) []BatchResult {
	if workers <= 0 {
		workers = 1
	}
	start := time.Now()
	results := make([]BatchResult, len(eventsPaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range eventsPaths {
		g.Go(func() error {
			res, err := p.Segments(gctx, SegmentsRequest{
				EventsPath: path,
				OutPath:    filepath.Join(filepath.Dir(path), ProjectFileName),
			})
			if err != nil {
				p.logger.Warn("Recording failed", zap.String("events", path), zap.Error(err))
			}
			results[i] = BatchResult{EventsPath: path, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info("Batch finished",
		zap.Int("recordings", len(eventsPaths)),
		zap.Int("failed", failed),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}
