package director

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ivlev/autocam/internal/analyzer"
	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/events"
	"github.com/ivlev/autocam/internal/project"
)

// Recording is everything the camera needs to know about one capture.
type Recording struct {
	Events       []events.InputEvent
	ScreenWidth  uint32
	ScreenHeight uint32
	DurationMs   int64
	OutputAspect float64 // width/height of the export frame
}

// Plan is the full result of directing one recording.
type Plan struct {
	Clusters    []analyzer.FocusCluster
	Transitions []FocusTransition
	NoOps       int // clusters dropped because they would not zoom in
	Samples     []CameraSample
	Segments    []project.ZoomSegment
}

// Director turns input events into camera samples and zoom segments.
type Director struct {
	cfg    config.SmartCameraConfig
	gate   analyzer.Gate
	logger *zap.Logger
}

// New creates a Director. A nil logger discards output.
func New(cfg config.SmartCameraConfig, logger *zap.Logger) (*Director, error) {
	gate, err := analyzer.NewGate(cfg)
	if err != nil {
		return nil, fmt.Errorf("click gate: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Director{cfg: cfg, gate: gate, logger: logger.Named("director")}, nil
}

// Config returns the camera configuration in use.
func (d *Director) Config() config.SmartCameraConfig {
	return d.cfg
}

// Plan directs a recording. It is deterministic and does not log.
// Recordings without events, screen area or duration produce an empty plan.
func (d *Director) Plan(rec Recording) Plan {
	if len(rec.Events) == 0 || rec.ScreenWidth == 0 || rec.ScreenHeight == 0 || rec.DurationMs <= 0 {
		return Plan{}
	}

	geo := NewGeometry(rec.ScreenWidth, rec.ScreenHeight, rec.OutputAspect)
	vel := analyzer.NewVelocity(rec.Events)
	clusters := analyzer.Clusters(d.gate, rec.Events, d.cfg.ClickClusterGapMs)
	transitions, noops := NewResolver(geo, d.cfg).Transitions(clusters, vel)

	samples := NewMachine(geo, d.cfg, rec.Events, transitions).Run(rec.DurationMs)
	return Plan{
		Clusters:    clusters,
		Transitions: transitions,
		NoOps:       noops,
		Samples:     samples,
		Segments:    ExtractSegments(samples, geo, d.cfg),
	}
}

// Simulate returns the per-tick camera samples of a recording.
func (d *Director) Simulate(rec Recording) []CameraSample {
	return d.Plan(rec).Samples
}

// GenerateSegments directs a recording and returns its zoom segments.
func (d *Director) GenerateSegments(rec Recording) []project.ZoomSegment {
	plan := d.Plan(rec)

	if d.logger.Core().Enabled(zap.DebugLevel) {
		vel := analyzer.NewVelocity(rec.Events)
		for _, t := range plan.Transitions {
			d.logger.Debug("Focus transition",
				zap.Int64("start_ts", t.StartTS),
				zap.Int64("trigger_ts", t.TriggerTS),
				zap.Int64("hold_until_ts", t.ClusterEndTS),
				zap.Float64("zoom", t.Zoom),
				zap.Float64("approach_speed_px_ms", vel.AverageSpeed(t.TriggerTS, d.cfg.MaxLookaheadMs)),
			)
		}
	}
	if plan.NoOps > 0 {
		d.logger.Debug("Dropped full-frame targets", zap.Int("count", plan.NoOps))
	}

	d.logger.Info("Camera directed",
		zap.Int("events", len(rec.Events)),
		zap.Int("clusters", len(plan.Clusters)),
		zap.Int("transitions", len(plan.Transitions)),
		zap.Int("samples", len(plan.Samples)),
		zap.Int("segments", len(plan.Segments)),
	)
	return plan.Segments
}
