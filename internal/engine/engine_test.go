package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/events"
	"github.com/ivlev/autocam/internal/project"
)

func writeRecording(t *testing.T, dir string, offset float64) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	bounds := &events.BoundingRect{X: int32(500 + offset), Y: 350, Width: 240, Height: 80}
	f := &events.File{
		SchemaVersion: events.SchemaVersion,
		RecordingID:   "rec-" + filepath.Base(dir),
		ScreenWidth:   1920,
		ScreenHeight:  1080,
		ScaleFactor:   1,
		Events: []events.InputEvent{
			events.Move(0, 960, 540),
			events.Move(500, 700+offset, 450),
			events.Click(1000, 600+offset, 400, &events.UIContext{BoundingRect: bounds}),
			events.MouseUp(1050, 600+offset, 400),
			events.Click(2100, 620+offset, 410, &events.UIContext{BoundingRect: bounds}),
			events.MouseUp(2150, 620+offset, 410),
			events.Move(4000, 640+offset, 420),
			events.Move(6000, 650+offset, 420),
		},
	}
	path := filepath.Join(dir, EventsFileName)
	require.NoError(t, events.WriteFile(f, path))
	return path
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(config.NewDefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return p
}

func TestSegmentsWritesProject(t *testing.T) {
	dir := t.TempDir()
	eventsPath := writeRecording(t, filepath.Join(dir, "demo"), 0)
	out := filepath.Join(dir, "demo", "project.yaml")

	res, err := newPipeline(t).Segments(context.Background(), SegmentsRequest{EventsPath: eventsPath, OutPath: out})
	require.NoError(t, err)
	require.NotEmpty(t, res.Project.Timeline.ZoomSegments)
	assert.Equal(t, "rec-demo", res.Project.ID)
	assert.Equal(t, "demo", res.Project.Name)
	assert.Equal(t, int64(6000), res.Project.DurationMs)

	loaded, err := project.ReadProject(out)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Project.Timeline, loaded.Timeline); diff != "" {
		t.Errorf("project round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentsDurationOverride(t *testing.T) {
	eventsPath := writeRecording(t, t.TempDir(), 0)
	res, err := newPipeline(t).Segments(context.Background(), SegmentsRequest{EventsPath: eventsPath, DurationMs: 9000})
	require.NoError(t, err)
	assert.Equal(t, int64(9000), res.Project.DurationMs)
	assert.Empty(t, res.OutPath)
}

func TestSegmentsMissingFile(t *testing.T) {
	_, err := newPipeline(t).Segments(context.Background(), SegmentsRequest{EventsPath: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestSegmentsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline(t).Segments(ctx, SegmentsRequest{EventsPath: "unused"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPipelineRejectsInvalidConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Camera.ActivationMode = "triple-click"
	_, err := NewPipeline(cfg, nil)
	assert.Error(t, err)
}

func TestExportBuildsFilterGraph(t *testing.T) {
	dir := t.TempDir()
	eventsPath := writeRecording(t, dir, 0)
	out := filepath.Join(dir, "project.json")

	p := newPipeline(t)
	_, err := p.Segments(context.Background(), SegmentsRequest{EventsPath: eventsPath, OutPath: out})
	require.NoError(t, err)

	res, err := p.Export(context.Background(), ExportRequest{ProjectPath: out, SourceDurationMs: 3000})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Filter, "fps=30,split=2[base][zoom]"), res.Filter)
	assert.Contains(t, res.Filter, "[vout]")
	assert.Equal(t, 1920, res.Params.SourceWidth)
	assert.Equal(t, int64(3000), res.Params.SourceDurationMs)
	assert.Equal(t, int64(6000), res.Params.ProjectDurationMs)
}

func TestBatchMatchesSequentialRuns(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for i, name := range []string{"a", "b", "c", "d"} {
		paths = append(paths, writeRecording(t, filepath.Join(root, name), float64(i*150)))
	}

	found, err := FindRecordings(root)
	require.NoError(t, err)
	assert.Equal(t, paths, found)

	p := newPipeline(t)
	var sequential [][]project.ZoomSegment
	for _, path := range paths {
		res, err := p.Segments(context.Background(), SegmentsRequest{EventsPath: path})
		require.NoError(t, err)
		sequential = append(sequential, res.Project.Timeline.ZoomSegments)
	}

	results := p.Batch(context.Background(), found, 3)
	require.Len(t, results, len(paths))
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, paths[i], r.EventsPath)
		if diff := cmp.Diff(sequential[i], r.Result.Project.Timeline.ZoomSegments); diff != "" {
			t.Errorf("recording %d differs (-sequential +batch):\n%s", i, diff)
		}
		assert.FileExists(t, filepath.Join(filepath.Dir(paths[i]), ProjectFileName))
	}
}

func TestBatchReportsFailuresPerRecording(t *testing.T) {
	root := t.TempDir()
	good := writeRecording(t, filepath.Join(root, "good"), 0)
	bad := filepath.Join(root, "bad", EventsFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0755))
	require.NoError(t, os.WriteFile(bad, []byte(`{"schemaVersion": 99}`), 0644))

	results := newPipeline(t).Batch(context.Background(), []string{bad, good}, 0)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, events.ErrUnsupportedSchema)
	assert.NoError(t, results[1].Err)
}

func TestFindRecordingsEmpty(t *testing.T) {
	_, err := FindRecordings(t.TempDir())
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	r := NewReport("dev", "segments", 2, 5, 1500*time.Millisecond)
	out := r.String()
	assert.Contains(t, out, "PERFORMANCE REPORT")
	assert.Contains(t, out, "Recordings: 2")
	assert.Contains(t, out, "Total Time: 1.50s")

	path := filepath.Join(t.TempDir(), "benchmark.log")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, r.AppendBenchmark(path, now))
	require.NoError(t, r.AppendBenchmark(path, now))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[2026-01-02 03:04:05] Build: dev | Command: segments"), lines[0])
}
