package effects

import (
	"fmt"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/project"
	"github.com/ivlev/autocam/internal/renderer"
)

// Effect produces a complete ffmpeg filter graph for one export. The graph
// reads the default video input and labels its output [vout].
type Effect interface {
	GenerateFilter(params config.ExportParams) string
}

// StaticEffect letterboxes the source into the output frame without moving
// the camera.
type StaticEffect struct{}

func (e *StaticEffect) GenerateFilter(p config.ExportParams) string {
	return fmt.Sprintf("fps=%d,%s[vout]", max(p.FPS, 1), letterbox(p))
}

// CameraEffect drives the camera through a project's zoom segments.
type CameraEffect struct {
	Project *project.Project
}

// NewCameraEffect creates a CameraEffect for p.
func NewCameraEffect(p *project.Project) *CameraEffect {
	return &CameraEffect{Project: p}
}

// GenerateFilter upsamples to the export rate, scales a copy of the frame by
// the zoom expression and overlays it at the negated offsets, then fits the
// result into the output frame.
func (e *CameraEffect) GenerateFilter(p config.ExportParams) string {
	if e.Project == nil {
		return (&StaticEffect{}).GenerateFilter(p)
	}
	exprs := renderer.BuildCameraExprs(e.Project, p)
	return fmt.Sprintf(
		"fps=%d,split=2[base][zoom];"+
			"[zoom]scale=w='iw*(%s)':h='ih*(%s)':eval=frame[scaled];"+
			"[base][scaled]overlay=x='-max(0,min(%s,overlay_w-main_w))':y='-max(0,min(%s,overlay_h-main_h))':eval=frame[cam];"+
			"[cam]%s[vout]",
		max(p.FPS, 1), exprs.Zoom, exprs.Zoom, exprs.OffsetX, exprs.OffsetY, letterbox(p))
}

func letterbox(p config.ExportParams) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		p.Width, p.Height, p.Width, p.Height)
}
