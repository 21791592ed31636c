// Package project holds the persisted editing model: zoom segments on a
// timeline plus the recording they belong to.
package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/autocam/internal/spring"
)

// SchemaVersion is the newest project schema this package understands.
const SchemaVersion = 1

// NormalizedRect is a rectangle in screen-fraction space, [0,1] on both axes.
type NormalizedRect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// FullFrame is the rectangle covering the whole screen.
func FullFrame() NormalizedRect {
	return NormalizedRect{Width: 1, Height: 1}
}

// Normalize clamps the size into [0.001, 1] and moves the origin so the
// rectangle stays inside the unit square.
func (r NormalizedRect) Normalize() NormalizedRect {
	w := clamp(r.Width, 0.001, 1)
	h := clamp(r.Height, 0.001, 1)
	return NormalizedRect{
		X:      clamp(r.X, 0, 1-w),
		Y:      clamp(r.Y, 0, 1-h),
		Width:  w,
		Height: h,
	}
}

// Offset shifts a normalised copy of r, keeping it inside the unit square.
func (r NormalizedRect) Offset(dx, dy float64) NormalizedRect {
	n := r.Normalize()
	n.X = clamp(n.X+dx, 0, 1-n.Width)
	n.Y = clamp(n.Y+dy, 0, 1-n.Height)
	return n
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// TargetPoint is a sparse camera keyframe inside a segment.
type TargetPoint struct {
	TS   int64          `json:"ts" yaml:"ts"`
	Rect NormalizedRect `json:"rect" yaml:"rect"`
}

// PanKeyframe is the offset-based keyframe used by older projects.
type PanKeyframe struct {
	TS      int64   `json:"ts" yaml:"ts"`
	OffsetX float64 `json:"offsetX" yaml:"offset_x"`
	OffsetY float64 `json:"offsetY" yaml:"offset_y"`
}

// CameraSpring is the spring a segment's camera follows its targets with.
type CameraSpring = spring.Params

// ZoomMode says how a segment's viewport moves.
type ZoomMode string

const (
	ModeFixed        ZoomMode = "fixed"
	ModeFollowCursor ZoomMode = "follow-cursor"
)

// ZoomTrigger records what created a segment.
type ZoomTrigger string

const (
	TriggerAutoClick ZoomTrigger = "auto-click"
	TriggerManual    ZoomTrigger = "manual"
)

// ZoomSegment is one zoomed span of the timeline.
type ZoomSegment struct {
	ID            string         `json:"id" yaml:"id"`
	StartTS       int64          `json:"startTs" yaml:"start_ts"`
	EndTS         int64          `json:"endTs" yaml:"end_ts"`
	InitialRect   NormalizedRect `json:"initialRect" yaml:"initial_rect"`
	TargetPoints  []TargetPoint  `json:"targetPoints" yaml:"target_points"`
	Spring        CameraSpring   `json:"spring" yaml:"spring"`
	PanTrajectory []PanKeyframe  `json:"panTrajectory,omitempty" yaml:"pan_trajectory,omitempty"`
	LegacyEasing  string         `json:"easing,omitempty" yaml:"easing,omitempty"`
	Mode          ZoomMode       `json:"mode" yaml:"mode"`
	Trigger       ZoomTrigger    `json:"trigger" yaml:"trigger"`
	IsAuto        bool           `json:"isAuto" yaml:"is_auto"`
}

// Timeline is the editable track of a project.
type Timeline struct {
	ZoomSegments []ZoomSegment `json:"zoomSegments" yaml:"zoom_segments"`
}

// Project is the root of a project file.
type Project struct {
	SchemaVersion int      `json:"schemaVersion" yaml:"schema_version"`
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	CreatedAt     int64    `json:"createdAt" yaml:"created_at"` // unix ms
	VideoPath     string   `json:"videoPath" yaml:"video_path"`
	EventsPath    string   `json:"eventsPath" yaml:"events_path"`
	DurationMs    int64    `json:"durationMs" yaml:"duration_ms"`
	VideoWidth    uint32   `json:"videoWidth" yaml:"video_width"`
	VideoHeight   uint32   `json:"videoHeight" yaml:"video_height"`
	Timeline      Timeline `json:"timeline" yaml:"timeline"`
}

// New creates an empty project. An empty id gets a random UUID.
func New(id, name string, durationMs int64, width, height uint32) *Project {
	if id == "" {
		id = uuid.NewString()
	}
	return &Project{
		SchemaVersion: SchemaVersion,
		ID:            id,
		Name:          name,
		CreatedAt:     time.Now().UnixMilli(),
		EventsPath:    "events.json",
		DurationMs:    durationMs,
		VideoWidth:    width,
		VideoHeight:   height,
	}
}
