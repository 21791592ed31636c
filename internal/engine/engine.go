// Package engine wires the camera pipeline to files: recordings in, project
// files and filter graphs out.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/director"
	"github.com/ivlev/autocam/internal/effects"
	"github.com/ivlev/autocam/internal/events"
	"github.com/ivlev/autocam/internal/project"
	"github.com/ivlev/autocam/internal/system"
)

// Pipeline runs the camera engine for one configuration. It holds no
// per-recording state and may be shared by concurrent calls.
type Pipeline struct {
	cfg      *config.Config
	director *director.Director
	logger   *zap.Logger
}

// NewPipeline creates a Pipeline. A nil logger discards output.
func NewPipeline(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := director.New(cfg.Camera, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, director: d, logger: logger.Named("engine")}, nil
}

// SegmentsRequest describes one recording to direct.
type SegmentsRequest struct {
	EventsPath string
	// DurationMs overrides the recording length. Zero uses the last event.
	DurationMs int64
	// Aspect overrides the export aspect ratio. Zero uses the export config.
	Aspect    float64
	VideoPath string
	// OutPath is where the project is written. Empty skips writing.
	OutPath string
}

// SegmentsResult is a directed recording.
type SegmentsResult struct {
	Project *project.Project
	Plan    director.Plan
	OutPath string
	Elapsed time.Duration
}

// Segments reads an events file, directs it and optionally writes the
// resulting project.
func (p *Pipeline) Segments(ctx context.Context, req SegmentsRequest) (*SegmentsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	file, err := events.ReadFile(req.EventsPath)
	if err != nil {
		return nil, err
	}

	duration := req.DurationMs
	if duration <= 0 {
		duration = file.Duration()
	}
	aspect := req.Aspect
	if aspect <= 0 {
		aspect = p.cfg.Export.AspectRatio()
	}

	plan := p.director.Plan(director.Recording{
		Events:       file.Events,
		ScreenWidth:  file.ScreenWidth,
		ScreenHeight: file.ScreenHeight,
		DurationMs:   duration,
		OutputAspect: aspect,
	})

	name := filepath.Base(filepath.Dir(req.EventsPath))
	proj := project.New(file.RecordingID, name, duration, file.ScreenWidth, file.ScreenHeight)
	proj.EventsPath = filepath.Base(req.EventsPath)
	proj.VideoPath = req.VideoPath
	proj.Timeline.ZoomSegments = plan.Segments

	log := p.logger.With(zap.String("events", req.EventsPath))
	log.Info("Recording directed",
		zap.Int("events", len(file.Events)),
		zap.Int("clusters", len(plan.Clusters)),
		zap.Int("transitions", len(plan.Transitions)),
		zap.Int("segments", len(plan.Segments)),
	)
	if plan.NoOps > 0 {
		log.Debug("Dropped full-frame targets", zap.Int("count", plan.NoOps))
	}

	if req.OutPath != "" {
		if err := project.WriteProject(proj, req.OutPath); err != nil {
			return nil, err
		}
		log.Info("Project written", zap.String("path", req.OutPath))
	}

	return &SegmentsResult{Project: proj, Plan: plan, OutPath: req.OutPath, Elapsed: time.Since(start)}, nil
}

// ExportRequest describes one filter graph render.
type ExportRequest struct {
	ProjectPath string
	// SourcePath, when set, is probed for the source size and duration.
	SourcePath string
	// SourceDurationMs overrides the source duration. Zero uses the probe,
	// then the project duration.
	SourceDurationMs int64
}

// ExportResult is a rendered filter graph with the parameters it was built
// for.
type ExportResult struct {
	Filter string
	Params config.ExportParams
}

// Export builds the ffmpeg filter graph for a project file.
func (p *Pipeline) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	proj, err := project.ReadProject(req.ProjectPath)
	if err != nil {
		return nil, err
	}

	params := config.ExportParams{
		Width:             p.cfg.Export.Width,
		Height:            p.cfg.Export.Height,
		FPS:               p.cfg.Export.FPS,
		SourceWidth:       int(proj.VideoWidth),
		SourceHeight:      int(proj.VideoHeight),
		SourceDurationMs:  proj.DurationMs,
		ProjectDurationMs: proj.DurationMs,
	}

	if req.SourcePath != "" {
		info, err := system.ProbeMedia(ctx, req.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("probe source: %w", err)
		}
		params.SourceWidth, params.SourceHeight = info.Width, info.Height
		if info.DurationMs > 0 {
			params.SourceDurationMs = info.DurationMs
		}
	}
	if req.SourceDurationMs > 0 {
		params.SourceDurationMs = req.SourceDurationMs
	}
	if params.SourceWidth <= 0 || params.SourceHeight <= 0 {
		params.SourceWidth, params.SourceHeight = params.Width, params.Height
	}

	filter := effects.NewCameraEffect(proj).GenerateFilter(params)
	p.logger.Info("Filter graph built",
		zap.String("project", req.ProjectPath),
		zap.Int("segments", len(proj.Timeline.ZoomSegments)),
		zap.Int("filter_bytes", len(filter)),
	)
	return &ExportResult{Filter: filter, Params: params}, nil
}
