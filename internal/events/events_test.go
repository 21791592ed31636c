package events

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestClickSerializesCamelCaseUIContext(t *testing.T) {
	ev := Click(123, 10, 20, &UIContext{
		AppName:      strPtr("App"),
		ControlName:  strPtr("Button"),
		BoundingRect: &BoundingRect{X: 1, Y: 2, Width: 3, Height: 4},
	})

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"uiContext"`)
	assert.NotContains(t, s, `"ui_context"`)
	assert.Contains(t, s, `"type":"click"`)
}

func TestKeyEventSerializesCamelCaseKeyCode(t *testing.T) {
	data, err := json.Marshal(KeyDown(100, "KeyA"))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"keyCode"`)
	assert.NotContains(t, string(data), `"key_code"`)
}

func TestLegacySnakeCaseFieldsAreAccepted(t *testing.T) {
	var click InputEvent
	err := json.Unmarshal([]byte(`{"type":"click","ts":1,"x":100.0,"y":200.0,"button":"left","ui_context":null}`), &click)
	require.NoError(t, err)
	assert.Equal(t, KindClick, click.Kind)
	assert.Nil(t, click.UI)

	var key InputEvent
	err = json.Unmarshal([]byte(`{"type":"keyDown","ts":2,"key_code":"KeyB"}`), &key)
	require.NoError(t, err)
	assert.Equal(t, "KeyB", key.KeyCode)
}

func TestUnknownEventTypeIsRejected(t *testing.T) {
	var ev InputEvent
	err := json.Unmarshal([]byte(`{"type":"teleport","ts":5}`), &ev)
	assert.Error(t, err)
}

func TestBoundsIgnoresEmptyRects(t *testing.T) {
	ev := Click(0, 0, 0, &UIContext{BoundingRect: &BoundingRect{X: 1, Y: 1, Width: 0, Height: 10}})
	_, ok := ev.Bounds()
	assert.False(t, ok)

	ev = Click(0, 0, 0, &UIContext{BoundingRect: &BoundingRect{X: 1, Y: 1, Width: 5, Height: 10}})
	r, ok := ev.Bounds()
	assert.True(t, ok)
	assert.Equal(t, uint32(5), r.Width)

	_, ok = Move(0, 1, 1).Bounds()
	assert.False(t, ok)
}

func TestSortedIsStableAndDoesNotMutate(t *testing.T) {
	in := []InputEvent{Move(20, 1, 1), Move(10, 2, 2), Click(10, 3, 3, nil)}
	out := Sorted(in)

	assert.Equal(t, int64(20), in[0].TS, "input must not be reordered")
	require.Len(t, out, 3)
	assert.Equal(t, KindMove, out[0].Kind)
	assert.Equal(t, KindClick, out[1].Kind)
	assert.Equal(t, int64(20), out[2].TS)
}

func TestFileWriteRead(t *testing.T) {
	f := &File{
		SchemaVersion: SchemaVersion,
		RecordingID:   "rec-1",
		ScreenWidth:   1920,
		ScreenHeight:  1080,
		ScaleFactor:   1.25,
		Events: []InputEvent{
			Move(0, 10, 10),
			Click(500, 20, 20, nil),
			Scroll(700, 20, 20, 0, -120),
			KeyUp(900, "ControlLeft"),
		},
	}
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, WriteFile(f, path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Events, got.Events)
	assert.Equal(t, int64(900), got.Duration())
}

func TestDecodeRejectsNewerSchema(t *testing.T) {
	_, err := Decode([]byte(`{"schemaVersion":99,"events":[]}`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported events schema"))
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
}
