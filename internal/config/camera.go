package config

import (
	"errors"
	"fmt"

	"github.com/ivlev/autocam/internal/spring"
)

// ActivationMode selects which clicks may drive the camera.
type ActivationMode string

const (
	ModeSingleClick      ActivationMode = "single-click"
	ModeMultiClickWindow ActivationMode = "multi-click-window"
	ModeCtrlClick        ActivationMode = "ctrl-click"
)

// SmartCameraConfig holds every knob of the adaptive camera. Durations are in
// milliseconds, ratios are fractions of the screen or viewport.
type SmartCameraConfig struct {
	ActivationMode ActivationMode `mapstructure:"activation_mode" yaml:"activation_mode"`

	FixedDtMs             int64 `mapstructure:"fixed_dt_ms" yaml:"fixed_dt_ms"`
	SegmentTargetSampleMs int64 `mapstructure:"segment_target_sample_ms" yaml:"segment_target_sample_ms"`

	DeadZoneRatio          float64 `mapstructure:"dead_zone_ratio" yaml:"dead_zone_ratio"`
	HardEdgeRatio          float64 `mapstructure:"hard_edge_ratio" yaml:"hard_edge_ratio"`
	HardEdgePanSpeedPxPerS float64 `mapstructure:"hard_edge_pan_speed_px_per_s" yaml:"hard_edge_pan_speed_px_per_s"`
	EscapeDistanceRatio    float64 `mapstructure:"escape_distance_ratio" yaml:"escape_distance_ratio"`
	SafeZoneMarginRatio    float64 `mapstructure:"safe_zone_margin_ratio" yaml:"safe_zone_margin_ratio"`

	ScrollShiftRatio                float64 `mapstructure:"scroll_shift_ratio" yaml:"scroll_shift_ratio"`
	ScrollIdleResetMs               int64   `mapstructure:"scroll_idle_reset_ms" yaml:"scroll_idle_reset_ms"`
	GlobalScrollDurationMs          int64   `mapstructure:"global_scroll_duration_ms" yaml:"global_scroll_duration_ms"`
	GlobalScrollViewportTravelRatio float64 `mapstructure:"global_scroll_viewport_travel_ratio" yaml:"global_scroll_viewport_travel_ratio"`

	SemanticPaddingRatio float64 `mapstructure:"semantic_padding_ratio" yaml:"semantic_padding_ratio"`
	FallbackZoom         float64 `mapstructure:"fallback_zoom" yaml:"fallback_zoom"`
	FreeRoamZoom         float64 `mapstructure:"free_roam_zoom" yaml:"free_roam_zoom"`
	MaxZoomLimit         float64 `mapstructure:"max_zoom_limit" yaml:"max_zoom_limit"`

	MaxLookaheadMs           int64   `mapstructure:"max_lookahead_ms" yaml:"max_lookahead_ms"`
	VelocityThresholdPxPerMs float64 `mapstructure:"velocity_threshold_px_per_ms" yaml:"velocity_threshold_px_per_ms"`

	ActivationWindowMs  int64 `mapstructure:"activation_window_ms" yaml:"activation_window_ms"`
	MinClicksToActivate int   `mapstructure:"min_clicks_to_activate" yaml:"min_clicks_to_activate"`
	ClickClusterGapMs   int64 `mapstructure:"click_cluster_gap_ms" yaml:"click_cluster_gap_ms"`
	MinZoomIntervalMs   int64 `mapstructure:"min_zoom_interval_ms" yaml:"min_zoom_interval_ms"`
	MinLockDurationMs   int64 `mapstructure:"min_lock_duration_ms" yaml:"min_lock_duration_ms"`
	LockRecentWindowMs  int64 `mapstructure:"lock_recent_window_ms" yaml:"lock_recent_window_ms"`

	Spring spring.Params `mapstructure:"spring" yaml:"spring"`
}

// DefaultCamera returns the tuned defaults of the adaptive camera.
func DefaultCamera() SmartCameraConfig {
	return SmartCameraConfig{
		ActivationMode:                  ModeMultiClickWindow,
		FixedDtMs:                       8,
		SegmentTargetSampleMs:           75,
		DeadZoneRatio:                   0.40,
		HardEdgeRatio:                   0.35,
		HardEdgePanSpeedPxPerS:          1200,
		EscapeDistanceRatio:             0.80,
		SafeZoneMarginRatio:             0.15,
		ScrollShiftRatio:                0.10,
		ScrollIdleResetMs:               300,
		GlobalScrollDurationMs:          3000,
		GlobalScrollViewportTravelRatio: 1.5,
		SemanticPaddingRatio:            0.20,
		FallbackZoom:                    2.0,
		FreeRoamZoom:                    1.0,
		MaxZoomLimit:                    2.5,
		MaxLookaheadMs:                  400,
		VelocityThresholdPxPerMs:        0.55,
		ActivationWindowMs:              3000,
		MinClicksToActivate:             2,
		ClickClusterGapMs:               300,
		MinZoomIntervalMs:               2000,
		MinLockDurationMs:               1800,
		LockRecentWindowMs:              2200,
		Spring:                          spring.DefaultParams(),
	}
}

// ForTriggerMode returns the defaults tuned for a recording trigger mode.
func ForTriggerMode(mode ActivationMode) SmartCameraConfig {
	return DefaultCamera().WithTriggerMode(mode)
}

// WithTriggerMode applies a trigger mode preset to c, leaving every other
// knob alone. Single and ctrl click react to every accepted click, so click
// coalescing and zoom pacing are disabled for them.
func (c SmartCameraConfig) WithTriggerMode(mode ActivationMode) SmartCameraConfig {
	c.ActivationMode = mode
	switch mode {
	case ModeSingleClick, ModeCtrlClick:
		c.MinClicksToActivate = 1
		c.ClickClusterGapMs = 1
		c.MinZoomIntervalMs = 1
	default:
		c.ActivationMode = ModeMultiClickWindow
		c.MinClicksToActivate = 2
		c.ActivationWindowMs = 3000
		c.ClickClusterGapMs = 300
		c.MinZoomIntervalMs = 2000
	}
	return c
}

// ParseActivationMode accepts the kebab-case mode names.
func ParseActivationMode(s string) (ActivationMode, error) {
	switch m := ActivationMode(s); m {
	case ModeSingleClick, ModeMultiClickWindow, ModeCtrlClick:
		return m, nil
	}
	return "", fmt.Errorf("unknown activation mode %q", s)
}

// Validate rejects settings the engine cannot floor into something sensible.
func (c SmartCameraConfig) Validate() error {
	var errs []error
	if _, err := ParseActivationMode(string(c.ActivationMode)); err != nil {
		errs = append(errs, fmt.Errorf("camera.activation_mode: %w", err))
	}
	if c.FixedDtMs <= 0 {
		errs = append(errs, errors.New("camera.fixed_dt_ms must be positive"))
	}
	if c.MinClicksToActivate < 1 {
		errs = append(errs, errors.New("camera.min_clicks_to_activate must be at least 1"))
	}
	if c.MaxZoomLimit < 1 {
		errs = append(errs, fmt.Errorf("camera.max_zoom_limit must be >= 1, got %g", c.MaxZoomLimit))
	}
	if c.FreeRoamZoom < 1 {
		errs = append(errs, fmt.Errorf("camera.free_roam_zoom must be >= 1, got %g", c.FreeRoamZoom))
	}
	if c.SafeZoneMarginRatio < 0 || c.SafeZoneMarginRatio >= 0.5 {
		errs = append(errs, fmt.Errorf("camera.safe_zone_margin_ratio must be in [0, 0.5), got %g", c.SafeZoneMarginRatio))
	}
	if c.Spring.Mass <= 0 || c.Spring.Stiffness <= 0 || c.Spring.Damping < 0 {
		errs = append(errs, errors.New("camera.spring mass and stiffness must be positive, damping non-negative"))
	}
	return errors.Join(errs...)
}
